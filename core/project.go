package core

import "github.com/shopspring/decimal"

// Project is a tracked crypto project as shown on the project detail page
type Project struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Ticker         string          `json:"ticker"`
	MarketCapUSD   decimal.Decimal `json:"marketCapUsd"`
	WebsiteLink    string          `json:"websiteLink"`
	FacebookLink   string          `json:"facebookLink"`
	GithubLink     string          `json:"githubLink"`
	RedditLink     string          `json:"redditLink"`
	TwitterLink    string          `json:"twitterLink"`
	WhitepaperLink string          `json:"whitepaperLink"`
	SlackLink      string          `json:"slackLink"`
}
