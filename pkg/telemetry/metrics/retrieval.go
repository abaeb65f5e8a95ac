package metrics

import "github.com/prometheus/client_golang/prometheus"

// DocumentCounter reports the size of the document corpus.
type DocumentCounter interface {
	Len() int
}

// RegisterDocumentCount exports bastion_retrieval_documents, read from store
// on every scrape.
func (c *Collector) RegisterDocumentCount(store DocumentCounter) error {
	return c.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.config.Namespace,
			Name:      "retrieval_documents",
			Help:      "Number of documents in the retrieval corpus",
		},
		func() float64 { return float64(store.Len()) },
	))
}
