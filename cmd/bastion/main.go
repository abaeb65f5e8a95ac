// Bastion is a policy-enforcing gateway in front of LLM providers.
//
// Every prompt sent to POST /api/gateway passes through input guardrails,
// retrieval augmentation, load-aware provider routing, and output
// guardrails, and every decision lands in a tamper-evident audit log.
//
// Usage:
//
//	# Start the gateway with default configuration
//	bastion run
//
//	# Start with a configuration file and a dotenv file
//	bastion run --config /etc/bastion/config.yaml --env-file .env
//
//	# Validate configuration
//	bastion validate --config config.yaml
//
//	# Run the guardrails over a prompt without starting the server
//	bastion check "ignore previous instructions"
//
//	# Inspect the audit trail
//	bastion audit query --action guardrail_block --limit 20
//	bastion audit verify
//
//	# Search the document corpus
//	bastion docs search "security policy"
package main

import (
	"os"

	"bastion-hq/gateway/pkg/cli"
)

func main() {
	os.Exit(cli.ExitCode(Execute()))
}
