package core

import "time"

const (
	DefaultTopicWindow   = 30 * 24 * time.Hour
	DefaultTopicInterval = "1d"
)

// TopicQuery selects the mentions of a search text over a time range
type TopicQuery struct {
	SearchText string
	From       time.Time
	To         time.Time
	Interval   string // bucket size, e.g. "1h" or "1d"
}

// Mentions is the number of mentions in the bucket starting at Datetime
type Mentions struct {
	Datetime      time.Time `json:"datetime"`
	MentionsCount int       `json:"mentionsCount"`
}

// TopicCharts holds one mention series per social source
type TopicCharts struct {
	Telegram                []Mentions `json:"telegram"`
	Reddit                  []Mentions `json:"reddit"`
	ProfessionalTradersChat []Mentions `json:"professionalTradersChat"`
}

// TopicSearch is the result of a topic search, as drawn by the trends explorer
type TopicSearch struct {
	ChartsData TopicCharts `json:"chartsData"`
}

// Total returns the number of mentions across all sources
func (t *TopicSearch) Total() int {
	total := 0
	for _, series := range [][]Mentions{t.ChartsData.Telegram, t.ChartsData.Reddit, t.ChartsData.ProfessionalTradersChat} {
		for _, m := range series {
			total += m.MentionsCount
		}
	}
	return total
}
