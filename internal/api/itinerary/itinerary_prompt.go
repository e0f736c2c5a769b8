package itinerary

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

// promptData holds the already-formatted values the route template renders.
// Empty fields omit their line.
type promptData struct {
	Start              string
	End                string
	Route              string
	TravelDates        string
	Duration           int
	ArrivalTime        string
	DepartureTime      string
	PeopleCount        int
	AgeGroups          string
	MobilityIssues     bool
	SpecialDietary     string
	StyleLabel         string
	StyleValue         string
	BudgetLine         string
	Accommodation      string
	Transportation     string
	MustVisit          string
	MustAvoid          string
	MustVisitLocations string
	Weather            string
	Extras             []string
}

const routePromptText = `请为我在新疆维吾尔自治区规划一条个性化的旅游路线。

【目的地与时间】
{{- with .Start}}
- 起点：{{.}}{{end}}
{{- with .End}}
- 终点：{{.}}{{end}}
{{- with .Route}}
- 完整路线（按顺序）：{{.}}{{end}}
{{- with .TravelDates}}
- 旅行日期：{{.}}{{end}}
- 行程天数：{{.Duration}}天
{{- with .ArrivalTime}}
- 到达时段：{{.}}{{end}}
{{- with .DepartureTime}}
- 离开时段：{{.}}{{end}}

【人员信息】
{{- if gt .PeopleCount 0}}
- 人数：{{.PeopleCount}}人{{end}}
{{- with .AgeGroups}}
- 年龄段：{{.}}{{end}}
{{- if .MobilityIssues}}
- 行动不便者：是（路线需考虑无障碍设施）{{end}}
{{- with .SpecialDietary}}
- 特殊饮食需求：{{.}}{{end}}

【风格与节奏偏好】
{{- if .StyleValue}}
- {{.StyleLabel}}：{{.StyleValue}}{{end}}

【预算信息】
{{- with .BudgetLine}}
- {{.}}{{end}}

【住宿偏好】
{{- with .Accommodation}}
- 住宿偏好：{{.}}{{end}}

【交通偏好】
{{- with .Transportation}}
- 交通偏好：{{.}}{{end}}

【景点偏好】
{{- with .MustVisit}}
- 必看景点/体验：{{.}}{{end}}
{{- with .MustAvoid}}
- 必须避开：{{.}}{{end}}
{{- with .MustVisitLocations}}
- 必须包含的地点：{{.}}{{end}}

【其他要求】
{{- with .Weather}}
- 天气/季节敏感：{{.}}{{end}}

【额外服务需求】
{{- range .Extras}}
- {{.}}{{end}}

重要提示：路线标题和描述中必须明确包含起点和终点的城市名称，不能使用null或占位符。
例如：如果起点是乌鲁木齐，终点是喀什，标题应该是"乌鲁木齐到喀什的丝路文化之旅"，而不是"从null到null的路线"。

你是专业旅行规划师。请在保证落地性的前提下，生成一份结构清晰、信息准确的新疆行程方案，并重点覆盖以下要素：

【输出结构】
1. 路线标题：突出主题并包含起点/终点城市。
2. 路线描述：300-400字，说明亮点、适合人群、最佳季节与预期体验。
3. 行程安排：按天输出，共{{.Duration}}天，每天包含：
   - 当日标题 + 150-200字概述
   - 时间轴（精确到小时）+ 交通方式与费用
   - 主要景点列表：名称、100字说明、开放时间、门票、最佳时段、建议时长、优先级、替代方案、经纬度
   - 餐饮：1-3 家/次推荐，含餐厅类型或名称、代表菜、人均消费、是否清真/素食
   - 住宿：推荐区域 + 经济/舒适/高端各1个，含价格区间与预订建议
   - 当日预算小结：交通/餐饮/住宿/门票/其他及总计
4. 总体预算：汇总各成本类别与舒适/节省两档范围。
5. 打包清单：证件、衣物、用品、其他（各列举3-5项）。
6. 预订建议：列出需提前预约/购买的景点、餐厅、住宿与交通。
7. 实用小贴士 tips：天气穿着、交通、安全、文化习俗、最佳季节、证件准备、通讯网络、购物建议等8-12条。

请以JSON格式返回，格式如下（所有字段都必须填写详细内容）：
{
  "title": "路线标题（突出特色和主题）",
  "description": "路线描述（300-500字，包含亮点、适合人群、最佳季节、路线特色、文化背景、预期体验）",
  "itinerary": [
    {
      "day": 1,
      "title": "第一天标题（突出当日主题和核心体验）",
      "description": "第一天详细描述（200-300字，包含当日行程概述、主要活动、文化体验、亮点推荐、注意事项）",
      "locations": [
        {
          "name": "景点名称（真实存在的新疆景点）",
          "lat": 43.8833,
          "lng": 88.1333,
          "description": "景点详细描述（100-150字，包含历史背景、开放时间、门票价格、建议游览时长、注意事项）",
          "priority": "必去/推荐/可选",
          "alternative": "替代景点名称（如果该景点不可行）",
          "mapLink": "地图链接（可选）"
        }
      ],
      "accommodation": {
        "area": "推荐住宿区域",
        "budget": {"name": "经济型酒店名称", "address": "地址", "price": "200-300元/晚"},
        "comfort": {"name": "舒适型酒店名称", "address": "地址", "price": "300-500元/晚"},
        "luxury": {"name": "豪华型酒店名称", "address": "地址", "price": "500-800元/晚"}
      },
      "meals": [
        "早餐：XX餐厅位于XX路，推荐XX、XX，人均XX-XX元，用餐时间建议",
        "午餐：XX餐厅位于XX路，推荐XX、XX，人均XX-XX元，用餐时间建议",
        "晚餐：XX餐厅位于XX路，推荐XX、XX，人均XX-XX元，用餐时间建议"
      ],
      "transportation": "交通信息（景点间交通方式、距离、预计时间、费用）",
      "timeSchedule": "时间安排（例如：08:00-09:00 酒店早餐；09:00-10:30 前往XX景点）",
      "dailyBudget": "每日预算分配（交通XX元、餐饮XX元、住宿XX元、门票XX元、其他XX元，总计XX元）"
    }
  ],
  "budgetBreakdown": {
    "transportation": "交通费用说明和预算",
    "accommodation": "住宿费用说明和预算",
    "meals": "餐饮费用说明和预算",
    "tickets": "门票费用说明和预算",
    "other": "其他费用说明和预算",
    "totalRange": "总预算范围（最低预算XX元，舒适预算XX元）"
  },
  "packingList": {
    "documents": ["身份证", "边防证"],
    "clothing": ["根据季节列出具体衣物"],
    "essentials": ["防晒用品", "药品", "电子设备"],
    "other": ["其他必需品"]
  },
  "bookingAdvice": {
    "attractions": ["需要提前预订的景点及预订方式"],
    "restaurants": ["需要提前预订的餐厅及预订方式"],
    "accommodation": "住宿预订建议",
    "transportation": "交通预订建议"
  },
  "tips": ["天气和穿着建议", "交通注意事项", "安全注意事项", "文化习俗"]
}

重要要求：
1. 所有地点必须是新疆维吾尔自治区内的真实景点，确保路线合理可行
2. 每个地点必须包含精确的 lat（纬度）和 lng（经度）坐标，坐标必须是新疆境内的有效数字
3. 同一天安排的景点不能距离过远（建议单日行程不超过300公里）
4. 路线要符合预算要求，餐饮和住宿推荐提供不同价位的选择
5. 时间安排要合理，考虑景点开放时间和交通时间

【严格格式要求】
A. 仅输出合法 JSON，禁止使用 Markdown、额外文字或注释。
B. 返回前请逐字段自检，保证所有引号、逗号、括号成对出现，没有 19:"00 这类时间格式错误。
C. 若无法满足要求，请直接重写结果，不要部分输出。
`

var routePromptTemplate = template.Must(template.New("route").Parse(routePromptText))

func newPromptData(prefs types.TripPreferences) promptData {
	start, end := resolveEndpoints(prefs)
	d := promptData{
		Start:              start,
		End:                end,
		TravelDates:        strings.TrimSpace(prefs.TravelDates),
		Duration:           tripDays(prefs),
		ArrivalTime:        strings.TrimSpace(prefs.ArrivalTime),
		DepartureTime:      strings.TrimSpace(prefs.DepartureTime),
		PeopleCount:        prefs.PeopleCount,
		AgeGroups:          strings.TrimSpace(prefs.AgeGroups),
		MobilityIssues:     isSet(prefs.HasMobilityIssues),
		SpecialDietary:     strings.TrimSpace(prefs.SpecialDietary),
		Accommodation:      joinNonEmpty(prefs.AccommodationPreferences, "、"),
		Transportation:     joinNonEmpty(prefs.TransportationPreferences, "、"),
		MustVisit:          joinNonEmpty(prefs.MustVisit, "、"),
		MustAvoid:          joinNonEmpty(prefs.MustAvoid, "、"),
		MustVisitLocations: joinNonEmpty(prefs.MustVisitLocations, "、"),
		Weather:            strings.TrimSpace(prefs.WeatherSensitivity),
	}
	if destinationSeparators.MatchString(prefs.Destinations) {
		d.Route = strings.TrimSpace(prefs.Destinations)
	}

	if s := joinNonEmpty(prefs.StylePreferences, "、"); s != "" {
		d.StyleLabel, d.StyleValue = "风格偏好", s
	} else if s := joinNonEmpty(prefs.Interests, "、"); s != "" {
		d.StyleLabel, d.StyleValue = "兴趣标签", s
	}

	if v, ok := positive(prefs.TotalBudget); ok {
		flight := "（不含机票）"
		if isSet(prefs.IncludesFlight) {
			flight = "（含机票）"
		}
		d.BudgetLine = "总预算：" + formatAmount(v) + "元" + flight
	} else if v, ok := positive(prefs.DailyBudget); ok {
		d.BudgetLine = "每日预算：" + formatAmount(v) + "元/天"
	} else if v, ok := positive(prefs.Budget); ok {
		d.BudgetLine = "预算：" + formatAmount(v) + "元"
	}

	extras := []struct {
		flag *bool
		text string
	}{
		{prefs.NeedRestaurantSuggestions, "需要餐厅预订建议"},
		{prefs.NeedTicketSuggestions, "需要门票预订建议"},
		{prefs.NeedTransportSuggestions, "需要交通预订建议"},
		{prefs.NeedPackingList, "需要打包清单"},
		{prefs.NeedSafetyTips, "需要安全提示"},
		{prefs.NeedVisaInfo, "需要签证/入境提醒"},
	}
	for _, e := range extras {
		if isSet(e.flag) {
			d.Extras = append(d.Extras, e.text)
		}
	}
	if formats := joinNonEmpty(prefs.OutputFormats, "、"); formats != "" {
		d.Extras = append(d.Extras, "期望输出形式："+formats)
	}
	return d
}

// BuildRoutePrompt renders the generation prompt. The output is a pure function of prefs.
func BuildRoutePrompt(prefs types.TripPreferences) (string, error) {
	var sb strings.Builder
	if err := routePromptTemplate.Execute(&sb, newPromptData(prefs)); err != nil {
		return "", fmt.Errorf("failed to render route prompt: %w", err)
	}
	return sb.String(), nil
}
