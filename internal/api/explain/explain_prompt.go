package explain

import (
	"strings"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const (
	lengthShort    = "short"
	lengthStandard = "standard"
	lengthDetailed = "detailed"
)

const systemPersona = "你是新疆数字文化平台的高级讲解员，需要以学术而生动的语言讲述新疆文化。"

const explainJSONShape = `{"title":"简洁标题","summary":"300字概述","highlights":["要点1","要点2"],` +
	`"references":["出处1","出处2"],"mediaInsight":"如果有图像，描述图像细节及文化意义"}`

// normalizeLength maps unknown or legacy values such as "medium" to standard.
func normalizeLength(length string) string {
	switch strings.ToLower(strings.TrimSpace(length)) {
	case lengthShort:
		return lengthShort
	case lengthDetailed:
		return lengthDetailed
	default:
		return lengthStandard
	}
}

func lengthRequirement(length string) string {
	switch normalizeLength(length) {
	case lengthShort:
		return "篇幅要求：浓缩为 200-300 字，突出核心史料与结论。"
	case lengthDetailed:
		return "篇幅要求：不少于 500 字，需包含历史脉络、艺术特征、传承现状与互动提问。"
	default:
		return "篇幅要求：约 350-400 字，兼顾信息密度与可读性。"
	}
}

// BuildExplainPrompt renders the user message for an explanation request.
func BuildExplainPrompt(req types.CultureExplainRequest) string {
	var b strings.Builder
	b.WriteString("请以资深新疆文化讲解员身份，对以下内容进行深入介绍。")

	line := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			b.WriteString("\n" + label + v)
		}
	}
	line("主题：", req.Query)
	line("补充背景：", req.Context)
	line("用户提供了图像链接（可用于推测展品）：", req.ImageURL)
	if audience := strings.TrimSpace(req.Audience); audience != "" {
		b.WriteString("\n目标受众：" + audience + "。请根据该受众的知识结构与兴趣点调整讲解视角与案例。")
	}
	line("讲解风格偏好：", req.Tone)
	b.WriteString("\n" + lengthRequirement(req.Length))

	var focus []string
	for _, f := range req.FocusPoints {
		if f = strings.TrimSpace(f); f != "" {
			focus = append(focus, f)
		}
	}
	if len(focus) > 0 {
		b.WriteString("\n重点请围绕以下维度展开：" + strings.Join(focus, "、") + "，并给出与这些维度相关的例证。")
	}

	b.WriteString("\n请按照 JSON 输出：" + explainJSONShape)
	b.WriteString("\n必须使用中文输出，兼顾学术性与可读性。")
	return b.String()
}
