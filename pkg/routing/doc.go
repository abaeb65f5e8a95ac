// Package routing selects which text-generation provider handles a request.
//
// The Engine owns a table of ProviderStatus entries, one per known provider,
// seeded at construction. Selection honors an explicit provider hint when
// that provider is available; otherwise every available provider is scored
//
//	score = loadPercentage*0.5 + latencyMs*0.3
//
// and the lowest score wins. Ties go to the provider seeded first, so a fixed
// status snapshot always yields the same choice.
//
// The table is mutated only through UpdateProviderStatus and
// UpdateLoadPercentage. GetProviderHealth returns a copy.
//
// A Monitor can refresh the table on a cron schedule by probing each
// provider and deriving load from in-flight calls.
package routing
