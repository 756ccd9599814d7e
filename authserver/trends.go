package authserver

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/layer-3/walletauth/core"
)

// Social sources a mention can come from
const (
	SourceTelegram                = "telegram"
	SourceReddit                  = "reddit"
	SourceProfessionalTradersChat = "professional_traders_chat"
)

type mention struct {
	source string
	text   string
	at     time.Time
}

// RecordMention adds a social post to the trends data
func (s *Service) RecordMention(source, text string, at time.Time) error {
	switch source {
	case SourceTelegram, SourceReddit, SourceProfessionalTradersChat:
	default:
		return fmt.Errorf("unknown source %q", source)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mentions = append(s.mentions, mention{source: source, text: strings.ToLower(text), at: at.UTC()})
	return nil
}

// TopicSearch counts posts mentioning q.SearchText per source, bucketed by q.Interval
func (s *Service) TopicSearch(ctx context.Context, q core.TopicQuery) (*core.TopicSearch, error) {
	if strings.TrimSpace(q.SearchText) == "" {
		return nil, core.ErrEmptySearch
	}
	interval, err := parseInterval(q.Interval)
	if err != nil {
		return nil, err
	}
	if !q.From.Before(q.To) {
		return nil, fmt.Errorf("invalid range: from %s is not before to %s", q.From, q.To)
	}

	needle := strings.ToLower(q.SearchText)
	counts := map[string]map[time.Time]int{}

	s.mu.RLock()
	for _, m := range s.mentions {
		if m.at.Before(q.From) || !m.at.Before(q.To) || !strings.Contains(m.text, needle) {
			continue
		}
		bucket := q.From.Add(m.at.Sub(q.From) / interval * interval).UTC()
		if counts[m.source] == nil {
			counts[m.source] = map[time.Time]int{}
		}
		counts[m.source][bucket]++
	}
	s.mu.RUnlock()

	return &core.TopicSearch{ChartsData: core.TopicCharts{
		Telegram:                series(counts[SourceTelegram]),
		Reddit:                  series(counts[SourceReddit]),
		ProfessionalTradersChat: series(counts[SourceProfessionalTradersChat]),
	}}, nil
}

func series(buckets map[time.Time]int) []core.Mentions {
	out := make([]core.Mentions, 0, len(buckets))
	for at, n := range buckets {
		out = append(out, core.Mentions{Datetime: at, MentionsCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Datetime.Before(out[j].Datetime) })
	return out
}

// parseInterval accepts Go durations plus a day suffix, e.g. "7d"
func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		s = core.DefaultTopicInterval
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid interval %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	return d, nil
}
