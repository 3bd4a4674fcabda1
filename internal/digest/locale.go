package digest

import (
	"fmt"
	"strings"
	"time"
)

type texts struct {
	digestWord       string
	allSubscriptions string
	unknownFeed      string
	unknownGroup     string
	noArticles       string // takes the lookback hours
}

var englishTexts = texts{
	digestWord:       "Digest",
	allSubscriptions: "All subscriptions",
	unknownFeed:      "Feed",
	unknownGroup:     "Group",
	noArticles:       "No unread articles in the past %d hours.",
}

var chineseTexts = texts{
	digestWord:       "简报",
	allSubscriptions: "全部订阅",
	unknownFeed:      "订阅源",
	unknownGroup:     "分组",
	noArticles:       "过去 %d 小时内没有未读文章。",
}

func textsFor(targetLang string) texts {
	lang := strings.ToLower(targetLang)
	if strings.Contains(lang, "zh") || strings.Contains(lang, "chinese") || strings.Contains(targetLang, "中文") {
		return chineseTexts
	}
	return englishTexts
}

// title renders "{scope} · {Digest} {MM-DD-HH:mm}".
func (t texts) title(scopeName string, at time.Time) string {
	return fmt.Sprintf("%s · %s %s", scopeName, t.digestWord, at.Format("01-02-15:04"))
}

func (t texts) emptyContent(hours int) string {
	return fmt.Sprintf(t.noArticles, hours)
}
