package itinerary

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

type landmark struct {
	name        string
	lat, lng    float64
	description string
}

var landmarks = []landmark{
	{"天山天池", 43.8856, 88.1353, "天山天池是新疆著名的自然风景区，湖水清澈，四周群山环绕"},
	{"喀纳斯湖", 48.7128, 87.0483, "喀纳斯湖被誉为\"人间仙境\"，湖水呈现神秘的蓝绿色"},
	{"吐鲁番葡萄沟", 42.9476, 89.1891, "吐鲁番葡萄沟是新疆著名的葡萄种植基地，可以品尝到各种美味的葡萄"},
	{"那拉提草原", 43.2583, 83.2617, "那拉提草原是新疆最美的草原之一，可以体验骑马和草原文化"},
	{"赛里木湖", 44.6000, 81.1000, "赛里木湖是新疆最大的高山湖泊，湖水清澈见底"},
	{"巴音布鲁克草原", 43.0333, 84.1500, "巴音布鲁克草原是新疆重要的草原生态保护区"},
	{"火焰山", 42.9476, 89.1891, "火焰山是《西游记》中著名的景点，夏季温度极高"},
	{"国际大巴扎", 43.7731, 87.6139, "乌鲁木齐国际大巴扎是新疆最大的民族特色市场"},
	{"红山公园", 43.7731, 87.6139, "红山公园是乌鲁木齐市中心的标志性景点"},
	{"伊犁河谷", 43.9167, 81.3167, "伊犁河谷是新疆最富饶的地区之一，风景优美"},
}

const interiorDayStops = 3

// GenerateDefaultItinerary builds a plan from the fixed landmark catalog without any
// external call. It never fails.
func GenerateDefaultItinerary(prefs types.TripPreferences) *types.ItineraryPlan {
	start, end := displayEndpoints(prefs)
	days := tripDays(prefs)
	tags := interestTags(prefs)

	plan := &types.ItineraryPlan{
		Title:       fmt.Sprintf("从%s到%s的路线", start, end),
		Description: fmt.Sprintf("根据您的兴趣和需求生成的个性化路线，包含%d天的行程安排。", days),
		Itinerary:   make([]types.DayPlan, 0, days),
	}

	next := 0
	take := func(n int) []types.Location {
		locs := make([]types.Location, 0, n)
		for range n {
			lm := landmarks[next%len(landmarks)]
			next++
			lat, lng := lm.lat, lm.lng
			locs = append(locs, types.Location{
				Name:        lm.name,
				Lat:         &lat,
				Lng:         &lng,
				Description: lm.description,
			})
		}
		return locs
	}

	for i := 1; i <= days; i++ {
		day := types.DayPlan{Day: i, Meals: defaultMeals(len(tags) > 0)}
		switch {
		case i == 1:
			day.Title = "出发日 - 探索" + start
			day.Description = "从" + start + "出发，开始您的精彩旅程。"
			if days == 1 && end != start {
				day.Title += "，抵达" + end
				day.Description += "当天前往" + end + "，结束愉快的旅程。"
			}
			day.Locations = take(1)
		case i == days:
			day.Title = "返程日 - 抵达" + end
			day.Description = "前往" + end + "，结束愉快的旅程。"
			day.Locations = take(1)
		default:
			day.Title = fmt.Sprintf("第%d天 - 深度游览", i)
			day.Description = "继续探索新疆的美丽风光和丰富文化。"
			day.Locations = take(interiorDayStops)
		}

		if i < days {
			day.Accommodation = "建议在" + start + "附近预订酒店或民宿"
		} else {
			day.Accommodation = "在" + end + "住宿"
		}
		plan.Itinerary = append(plan.Itinerary, day)
	}

	plan.Tips = []string{
		"建议提前预订住宿，特别是在旅游旺季",
		"注意当地天气变化，新疆昼夜温差较大",
		"携带身份证件，部分景区需要实名登记",
	}
	if len(tags) > 0 {
		plan.Tips = append(plan.Tips, "根据您的兴趣标签："+strings.Join(tags, "、")+"，可以重点关注相关景点")
	}
	plan.Tips = append(plan.Tips, "尊重当地民族文化和习俗")
	return plan
}

func defaultMeals(themed bool) []string {
	if themed {
		return []string{"特色早餐（推荐：新疆馕、奶茶）", "当地特色午餐", "新疆风味晚餐（推荐：大盘鸡、手抓饭）"}
	}
	return []string{"早餐", "午餐", "晚餐"}
}
