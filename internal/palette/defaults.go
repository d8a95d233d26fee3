package palette

// DefaultGroups returns the built-in peptoid palette: monomers grouped by
// side-chain chemistry, plus proline analogues and the fallback entry.
func DefaultGroups() []Group {
	return []Group{
		{ID: "chiral_hydrophobic", Codes: SplitCodes("601 602 621 622 623 624"), Property: "Chiral Hydrophobic", Color: MustColor("#B95C00")},
		{ID: "hydrophobic", Codes: SplitCodes("001 003 005 007 020 101 103 127 130 202 203 208 210 211"), Property: "Hydrophobic", Color: MustColor("#FFAF22")},
		{ID: "chiral_polar", Codes: SplitCodes("631 632 633 634"), Property: "Chiral Polar", Color: MustColor("#0091B9")},
		{ID: "polar", Codes: SplitCodes("303 307"), Property: "Polar", Color: MustColor("#88CFFF")},
		{ID: "polar_hydrophobic", Codes: SplitCodes("129"), Property: "Polar+Hydrophobic", Color: MustColor("#C06EF7")},
		{ID: "negative", Codes: SplitCodes("314"), Property: "Negative", Color: MustColor("#F95B5E")},
		{ID: "positive", Codes: SplitCodes("332 333"), Property: "Positive", Color: MustColor("#5B75F9")},
		{ID: "pro", Codes: SplitCodes("PRO"), Property: "Proline", Color: MustColor("#B8B8B8")},
		{ID: "hyp", Codes: SplitCodes("HYP"), Property: "Hydroxyproline", Color: MustColor("#ABC5C5")},
		{ID: "sar", Codes: SplitCodes("SAR"), Property: "Sarcosine", Color: MustColor("#F9ECB3")},
		{ID: "default", Codes: []string{DefaultCode}, Property: "", Color: White},
	}
}

// DefaultMapping is NewMapping(DefaultGroups()...).
func DefaultMapping() *Mapping {
	return NewMapping(DefaultGroups()...)
}
