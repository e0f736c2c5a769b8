package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestResolveEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		prefs      types.TripPreferences
		start, end string
	}{
		{"comma list", types.TripPreferences{Destinations: "乌鲁木齐, 吐鲁番 ,喀什"}, "乌鲁木齐", "喀什"},
		{"full width comma", types.TripPreferences{Destinations: "乌鲁木齐，喀什"}, "乌鲁木齐", "喀什"},
		{"arrows", types.TripPreferences{Destinations: "伊宁→那拉提->库尔勒"}, "伊宁", "库尔勒"},
		{"single city", types.TripPreferences{Destinations: "喀什"}, "喀什", "喀什"},
		{"trailing separator", types.TripPreferences{Destinations: "喀什,"}, "喀什", "喀什"},
		{"legacy fields", types.TripPreferences{StartLocation: "阿勒泰", EndLocation: "哈密"}, "阿勒泰", "哈密"},
		{"nothing", types.TripPreferences{}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := resolveEndpoints(tt.prefs)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}

	start, end := displayEndpoints(types.TripPreferences{})
	assert.Equal(t, "起点", start)
	assert.Equal(t, "终点", end)
}

func TestBuildRoutePrompt(t *testing.T) {
	prefs := types.TripPreferences{
		Destinations:      "乌鲁木齐,吐鲁番,喀什",
		TravelDates:       "2025-07-01 至 2025-07-05",
		Duration:          5,
		PeopleCount:       2,
		AgeGroups:         "成人",
		HasMobilityIssues: ptr(true),
		StylePreferences:  []string{"人文", "美食"},
		Interests:         []string{"摄影"},
		TotalBudget:       ptr(8000.0),
		IncludesFlight:    ptr(true),
		MustVisit:         []string{"喀什古城"},
		MustAvoid:         []string{"长途夜车"},
		NeedPackingList:   ptr(true),
		NeedVisaInfo:      ptr(false),
	}

	prompt, err := BuildRoutePrompt(prefs)
	require.NoError(t, err)

	for _, want := range []string{
		"【目的地与时间】\n- 起点：乌鲁木齐\n- 终点：喀什\n- 完整路线（按顺序）：乌鲁木齐,吐鲁番,喀什",
		"- 旅行日期：2025-07-01 至 2025-07-05",
		"- 行程天数：5天",
		"- 人数：2人",
		"- 行动不便者：是（路线需考虑无障碍设施）",
		"- 风格偏好：人文、美食",
		"- 总预算：8000元（含机票）",
		"- 必看景点/体验：喀什古城",
		"- 必须避开：长途夜车",
		"- 需要打包清单",
		"不能使用null或占位符",
		`"itinerary": [`,
		"A. 仅输出合法 JSON",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "兴趣标签")
	assert.NotContains(t, prompt, "需要签证/入境提醒")

	again, err := BuildRoutePrompt(prefs)
	require.NoError(t, err)
	assert.Equal(t, prompt, again)
}

func TestBuildRoutePrompt_BudgetAndStyleFallbacks(t *testing.T) {
	t.Run("daily budget", func(t *testing.T) {
		prompt, err := BuildRoutePrompt(types.TripPreferences{Duration: 2, DailyBudget: ptr(450.5)})
		require.NoError(t, err)
		assert.Contains(t, prompt, "- 每日预算：450.5元/天")
	})

	t.Run("total budget without flight", func(t *testing.T) {
		prompt, err := BuildRoutePrompt(types.TripPreferences{Duration: 2, TotalBudget: ptr(3000.0), DailyBudget: ptr(100.0)})
		require.NoError(t, err)
		assert.Contains(t, prompt, "- 总预算：3000元（不含机票）")
		assert.NotContains(t, prompt, "- 每日预算：")
	})

	t.Run("legacy budget and interests", func(t *testing.T) {
		prompt, err := BuildRoutePrompt(types.TripPreferences{Duration: 2, Budget: ptr(2000.0), Interests: []string{"历史", "自然"}})
		require.NoError(t, err)
		assert.Contains(t, prompt, "- 预算：2000元")
		assert.Contains(t, prompt, "- 兴趣标签：历史、自然")
	})

	t.Run("empty sections keep their headers", func(t *testing.T) {
		prompt, err := BuildRoutePrompt(types.TripPreferences{Destinations: "喀什", Duration: 1})
		require.NoError(t, err)
		assert.Contains(t, prompt, "【预算信息】\n\n【住宿偏好】")
		assert.NotContains(t, prompt, "完整路线")
		assert.NotContains(t, prompt, "人数")
	})
}
