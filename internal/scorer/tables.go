package scorer

import "strings"

// translitTable maps non-Latin catalog terms to their romanized forms. This
// is a fixed whole-word lookup table, not a general transliteration
// algorithm; forms are matched directly and as substrings in both directions.
var translitTable = map[string][]string{
	"微信":    {"weixin", "wechat"},
	"支付宝":   {"zhifubao", "alipay"},
	"网易云音乐": {"wangyiyun", "wangyiyunyinyue"},
	"浏览器":   {"liulanqi", "browser"},
	"计算器":   {"jisuanqi", "calculator"},
	"记事本":   {"jishiben", "notepad"},
	"设置":    {"shezhi", "settings"},
	"文件":    {"wenjian", "file"},
	"谷歌":    {"guge", "google"},
	"百度":    {"baidu"},
	"截图":    {"jietu", "screenshot"},
	"翻译":    {"fanyi", "translate"},
	"词典":    {"cidian", "dictionary"},
	"终端":    {"zhongduan", "terminal"},
}

// synonymGroups links interchangeable launcher terms. Each group contains the
// canonical term plus its synonyms; a query and target are linked when both
// hit the same group by exact term or substring-of-synonym.
var synonymGroups = [][]string{
	{"browser", "chrome", "firefox", "edge", "safari"},
	{"editor", "vscode", "vim", "sublime", "notepad"},
	{"music", "spotify", "player", "itunes"},
	{"mail", "email", "outlook", "gmail", "thunderbird"},
	{"terminal", "console", "shell", "iterm"},
	{"screenshot", "capture", "snip"},
	{"settings", "preferences", "config"},
}

// translitMatch reports whether query equals, contains, or is contained by a
// romanized form of a non-Latin segment of target. The table is bidirectional:
// a non-Latin query matches a target that carries one of its romanized forms.
func translitMatch(query, target string) bool {
	if query == "" || target == "" {
		return false
	}
	for word, forms := range translitTable {
		if strings.Contains(target, word) {
			for _, f := range forms {
				if query == f || strings.Contains(query, f) || strings.Contains(f, query) {
					return true
				}
			}
		}
		if strings.Contains(query, word) {
			for _, f := range forms {
				if strings.Contains(target, f) {
					return true
				}
			}
		}
	}
	return false
}

// synonymMatch reports whether query and target are linked through a synonym
// group.
func synonymMatch(query, target string) bool {
	if query == "" || target == "" {
		return false
	}
	for _, group := range synonymGroups {
		var qHit, tHit bool
		for _, w := range group {
			if query == w || strings.Contains(w, query) {
				qHit = true
			}
			if target == w || strings.Contains(target, w) {
				tHit = true
			}
		}
		if qHit && tHit {
			return true
		}
	}
	return false
}
