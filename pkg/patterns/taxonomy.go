package patterns

// DefaultTaxonomy returns the built-in threat taxonomy. The pattern sources
// mirror the lure phrasing, payment pressure, throwaway-TLD links, and
// international sender formats common to DMV/toll-fee smishing campaigns.
// Sources are matched case-insensitively by NewRegistry.
func DefaultTaxonomy() []CategoryDef {
	return []CategoryDef{
		{
			Name: CategoryGovernment,
			Patterns: []string{
				`(dmv|department.*motor.*vehicles)`,
				`(license.*suspend|violation.*notice)`,
				`(government.*notice|official.*notice)`,
				`(penalty.*avoid|immediate.*action)`,
			},
		},
		{
			Name: CategoryFinancial,
			Patterns: []string{
				`(payment.*required|pay.*immediately)`,
				`(account.*suspend|freeze.*account)`,
				`(urgent.*payment|overdue.*payment)`,
				`(fine.*notice|penalty.*fee)`,
			},
		},
		{
			Name: CategorySuspiciousURL,
			Patterns: []string{
				`(\.vip|\.tk|\.ml|\.ga)`,
				`(gov-[a-z]+\.)`,
				`(secure-[a-z]+\.)`,
				`http[s]?://[^\s]+`,
			},
		},
		{
			Name: CategoryInternational,
			Patterns: []string{
				`\+63\d{10}`,
				`\+1\d{10}`,
				`\+\d{1,3}\d{7,14}`,
			},
		},
	}
}
