package retrieval

import "time"

// DefaultDocuments returns the built-in reference corpus.
func DefaultDocuments() []Document {
	return []Document{
		{
			ID:      "doc_001",
			Content: "NCSC Cybersecurity Guidelines: Implementing multi-factor authentication is essential for protecting sensitive systems. MFA should be enforced for all administrative access.",
			Metadata: Metadata{
				Source:         "NCSC Guidelines",
				Title:          "Multi-Factor Authentication Best Practices",
				CreatedAt:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Classification: Internal,
				Tags:           []string{"security", "mfa", "authentication"},
			},
		},
		{
			ID:      "doc_002",
			Content: "Data Protection Compliance: Under GDPR and PDPA regulations, organizations must implement appropriate technical and organizational measures to ensure data security.",
			Metadata: Metadata{
				Source:         "Compliance Documentation",
				Title:          "GDPR/PDPA Compliance Requirements",
				CreatedAt:      time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
				Classification: Internal,
				Tags:           []string{"gdpr", "pdpa", "compliance"},
			},
		},
		{
			ID:      "doc_003",
			Content: "Secure AI/GenAI Gateway Implementation: All AI interactions must pass through guardrails including PII detection, prompt injection prevention, and output validation.",
			Metadata: Metadata{
				Source:         "Technical Documentation",
				Title:          "AI Gateway Security Architecture",
				CreatedAt:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
				Classification: Confidential,
				Tags:           []string{"ai", "security", "guardrails"},
			},
		},
	}
}
