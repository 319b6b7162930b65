package dto

// Tweet sentiment buckets. Assigned once at fetch time, never revised.
const (
	SentimentHype     = "hype"
	SentimentBacklash = "backlash"
)

// StructuredTweet is the normalized short-form post shape persisted with a
// timeline event.
type StructuredTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
	Likes     int    `json:"likes"`
	Retweets  int    `json:"retweets"`
	Sentiment string `json:"sentiment"`
}

// TwitterSearchResponse is the wire shape of the social search API.
type TwitterSearchResponse struct {
	Data     []TwitterPost `json:"data"`
	Includes struct {
		Users []TwitterUser `json:"users"`
	} `json:"includes"`
}

// TwitterPost is one raw post from the social search API.
type TwitterPost struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
	} `json:"public_metrics"`
}

// TwitterUser is an author record from the social search API expansion.
type TwitterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}
