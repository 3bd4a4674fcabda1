package push

import (
	"net/url"
	"strings"
)

const (
	placeholderTitle   = "{{title}}"
	placeholderContent = "{{digest_content}}"
)

type service string

const (
	serviceDiscord  service = "discord"
	serviceTelegram service = "telegram"
	serviceWeCom    service = "wecom"
	serviceFeishu   service = "feishu"
	serviceGeneric  service = "generic"
)

// Bodies are JSON with placeholders inside string literals. The "\n"
// sequences are JSON escapes, not newlines, so they survive the newline
// strip applied to every template.
var templates = map[service]string{
	serviceDiscord:  `{"content":"{{title}}\n\n{{digest_content}}"}`,
	serviceTelegram: `{"text":"{{title}}\n\n{{digest_content}}"}`,
	serviceWeCom:    `{"msgtype":"markdown","markdown":{"content":"{{title}}\n\n{{digest_content}}"}}`,
	serviceFeishu:   `{"msg_type":"text","content":{"text":"{{title}}\n\n{{digest_content}}"}}`,
	serviceGeneric:  `{"title":"{{title}}","content":"{{digest_content}}"}`,
}

// Field length limits in runes. Services missing here are never split.
var limits = map[service]int{
	serviceDiscord:  2000,
	serviceTelegram: 4096,
	serviceWeCom:    2048,
}

func detectService(rawURL string) service {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(host)

	switch {
	case strings.Contains(host, "discord"):
		return serviceDiscord
	case strings.Contains(host, "telegram"):
		return serviceTelegram
	case strings.Contains(host, "qyapi.weixin"):
		return serviceWeCom
	case strings.Contains(host, "feishu"), strings.Contains(host, "larksuite"):
		return serviceFeishu
	default:
		return serviceGeneric
	}
}
