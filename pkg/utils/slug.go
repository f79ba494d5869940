package utils

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// Slug 将服务名转为小写 ascii slug（中文按拼音转写），
// 用于索引文档等需要 ascii 标识的场景。
func Slug(name string) string {
	args := pinyin.NewArgs()

	var b strings.Builder
	lastDash := true // 抑制开头的 '-'
	writeDash := func() {
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	for _, r := range name {
		switch {
		case r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		case r < 128:
			writeDash()
		default:
			// 非 ascii 字符尝试拼音转写，失败则当分隔符处理
			py := pinyin.SinglePinyin(r, args)
			if len(py) > 0 && py[0] != "" {
				writeDash()
				b.WriteString(py[0])
				lastDash = false
			} else {
				writeDash()
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
