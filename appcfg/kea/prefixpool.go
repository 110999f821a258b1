package keaconfig

// Represents prefix delegation pool structure within Kea configuration.
type PDPool struct {
	Prefix            string             `json:"prefix"`
	PrefixLen         int                `json:"prefix-len"`
	DelegatedLen      int                `json:"delegated-len"`
	ExcludedPrefix    string             `json:"excluded-prefix,omitempty"`
	ExcludedPrefixLen int                `json:"excluded-prefix-len,omitempty"`
	ClientClass       string             `json:"client-class,omitempty"`
	OptionData        []SingleOptionData `json:"option-data,omitempty"`
}
