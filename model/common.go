package model

type PagingMeta struct {
	Page   int                    `json:"page"`
	Count  int64                  `json:"count"`
	Limit  int                    `json:"limit"`
	Order  string                 `json:"order"`
	Filter map[string]interface{} `json:"filter"`
}

// PlatformCreatorID is the beneficiary id used for platform revenue markers
const PlatformCreatorID = "platform"
