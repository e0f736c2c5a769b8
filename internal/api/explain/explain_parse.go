package explain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-culture-routes/internal/api/itinerary"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

const (
	genericTitle        = "新疆文化讲解"
	defaultHighlight    = "新疆文化底蕴深厚，建议结合多媒体内容进行沉浸式体验。"
	defaultReference    = "新疆数字文化平台·AI助手"
	defaultMediaInsight = "如果有相关展品图像，可从纹理、工艺、色彩等角度进行讲解。"
)

type rawExplanation struct {
	Title        json.RawMessage `json:"title"`
	Summary      json.RawMessage `json:"summary"`
	Highlights   json.RawMessage `json:"highlights"`
	References   json.RawMessage `json:"references"`
	MediaInsight json.RawMessage `json:"mediaInsight"`
}

// extractJSONBlock returns the JSON object inside content and whether one was found.
// A ```json fence wins; otherwise the span from the first '{' to the last '}'.
func extractJSONBlock(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if i := strings.Index(trimmed, "```json"); i >= 0 {
		rest := trimmed[i+len("```json"):]
		if end := strings.Index(rest, "```"); end > 0 {
			return strings.TrimSpace(rest[:end]), true
		}
	}
	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first >= 0 && last > first {
		return trimmed[first : last+1], true
	}
	return "", false
}

// parseExplanation maps a completion onto an explanation. Plain prose without
// any JSON becomes the summary. Missing fields take defaults.
func parseExplanation(content string, req types.CultureExplainRequest) (*types.CultureExplanation, error) {
	block, ok := extractJSONBlock(content)
	if !ok {
		prose := strings.TrimSpace(content)
		if prose == "" {
			return nil, fmt.Errorf("explanation response is empty")
		}
		return withDefaults(&types.CultureExplanation{Title: genericTitle, Summary: prose}, req), nil
	}

	var raw rawExplanation
	if err := json.Unmarshal([]byte(itinerary.RepairJSON(block)), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode explanation: %w", err)
	}

	exp := &types.CultureExplanation{
		Title:        scalarText(raw.Title),
		Summary:      scalarText(raw.Summary),
		Highlights:   textList(raw.Highlights),
		References:   textList(raw.References),
		MediaInsight: scalarText(raw.MediaInsight),
	}
	return withDefaults(exp, req), nil
}

func withDefaults(exp *types.CultureExplanation, req types.CultureExplainRequest) *types.CultureExplanation {
	exp.Generated = true
	if exp.Title == "" {
		exp.Title = fallbackTitle(req)
	}
	if exp.Summary == "" {
		exp.Summary = defaultSummary(req)
	}
	if len(exp.Highlights) == 0 {
		exp.Highlights = []string{defaultHighlight}
	}
	if len(exp.References) == 0 {
		exp.References = []string{defaultReference}
	}
	if exp.MediaInsight == "" {
		exp.MediaInsight = defaultMediaInsight
	}
	return exp
}

// localExplanation is served when no provider answered.
func localExplanation(req types.CultureExplainRequest) *types.CultureExplanation {
	insight := "可配合权威图片或3D模型，增强理解体验。"
	if strings.TrimSpace(req.ImageURL) != "" {
		insight = "图像可重点描述纹理、颜色与工艺特征，引导用户放大细节观察。"
	}
	return &types.CultureExplanation{
		Title:   fallbackTitle(req),
		Summary: defaultSummary(req),
		Highlights: []string{
			"新疆拥有多民族交融的文化形态，可结合音乐、舞蹈、手工艺进行展示。",
			"建议关联平台内的非遗专题与地图地标，形成沉浸式体验。",
		},
		References:   []string{"新疆数字文化平台内容库"},
		MediaInsight: insight,
	}
}

func fallbackTitle(req types.CultureExplainRequest) string {
	if q := strings.TrimSpace(req.Query); q != "" {
		return q + " · 新疆文化解读"
	}
	return genericTitle
}

func defaultSummary(req types.CultureExplainRequest) string {
	if q := strings.TrimSpace(req.Query); q != "" {
		return "围绕“" + q + "”的核心元素，介绍其历史背景、艺术价值与在新疆文化体系中的地位。"
	}
	return "通过AI助手介绍新疆代表性文化内容，涵盖历史沿革、地域特色及现代传承路径。"
}

// scalarText renders strings, numbers and booleans; anything else is empty.
func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// textList accepts an array of scalars or a single string.
func textList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := scalarText(raw); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := scalarText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
