package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

// flexString accepts any JSON scalar. Objects and arrays decode to "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case b[0] == '{' || b[0] == '[':
		*f = ""
	default:
		*f = flexString(b)
	}
	return nil
}

// flexNumber accepts numbers and numeric strings; anything else leaves it unset.
type flexNumber struct {
	Value float64
	Valid bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = flexNumber{}
		return nil
	}
	*f = flexNumber{Value: v, Valid: true}
	return nil
}

func (f flexNumber) ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// lenient decodes T when the JSON has the expected shape and stays empty otherwise,
// so one malformed field never fails the whole plan.
type lenient[T any] struct {
	V  T
	OK bool
}

func (l *lenient[T]) UnmarshalJSON(b []byte) error {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		*l = lenient[T]{}
		return nil
	}
	*l = lenient[T]{V: v, OK: true}
	return nil
}

type rawPlan struct {
	Title           *flexString                  `json:"title"`
	Description     *flexString                  `json:"description"`
	Itinerary       lenient[[]lenient[rawDay]]   `json:"itinerary"`
	Tips            lenient[[]flexString]        `json:"tips"`
	BudgetBreakdown lenient[*rawBudgetBreakdown] `json:"budgetBreakdown"`
	PackingList     lenient[*rawPackingList]     `json:"packingList"`
	BookingAdvice   lenient[*rawBookingAdvice]   `json:"bookingAdvice"`
}

type rawDay struct {
	Day            *flexNumber                     `json:"day"`
	Title          *flexString                     `json:"title"`
	Description    flexString                      `json:"description"`
	Locations      lenient[[]lenient[rawLocation]] `json:"locations"`
	Accommodation  json.RawMessage                 `json:"accommodation"`
	Meals          lenient[[]flexString]           `json:"meals"`
	Transportation flexString                      `json:"transportation"`
	TimeSchedule   flexString                      `json:"timeSchedule"`
	DailyBudget    flexString                      `json:"dailyBudget"`
}

type rawLocation struct {
	Name        flexString `json:"name"`
	Lat         flexNumber `json:"lat"`
	Lng         flexNumber `json:"lng"`
	Description flexString `json:"description"`
	Priority    flexString `json:"priority"`
	Alternative flexString `json:"alternative"`
	MapLink     flexString `json:"mapLink"`
}

type rawLodging struct {
	Name    flexString `json:"name"`
	Address flexString `json:"address"`
	Price   flexString `json:"price"`
}

type rawAccommodation struct {
	Area    *flexString          `json:"area"`
	Budget  lenient[*rawLodging] `json:"budget"`
	Comfort lenient[*rawLodging] `json:"comfort"`
	Luxury  lenient[*rawLodging] `json:"luxury"`
}

type rawBudgetBreakdown struct {
	Transportation *flexString `json:"transportation"`
	Accommodation  *flexString `json:"accommodation"`
	Meals          *flexString `json:"meals"`
	Tickets        *flexString `json:"tickets"`
	Other          *flexString `json:"other"`
	TotalRange     *flexString `json:"totalRange"`
}

type rawPackingList struct {
	Documents  lenient[[]flexString] `json:"documents"`
	Clothing   lenient[[]flexString] `json:"clothing"`
	Essentials lenient[[]flexString] `json:"essentials"`
	Other      lenient[[]flexString] `json:"other"`
}

type rawBookingAdvice struct {
	Attractions    lenient[[]flexString] `json:"attractions"`
	Restaurants    lenient[[]flexString] `json:"restaurants"`
	Accommodation  *flexString           `json:"accommodation"`
	Transportation *flexString           `json:"transportation"`
}

// ParsePlan repairs and decodes model output into a plan for prefs.
func ParsePlan(content string, prefs types.TripPreferences) (*types.ItineraryPlan, error) {
	repaired := RepairJSON(content)
	var raw rawPlan
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return nil, formatError([]byte(repaired), err)
	}
	return mapPlan(raw, prefs), nil
}

func mapPlan(raw rawPlan, prefs types.TripPreferences) *types.ItineraryPlan {
	start, end := displayEndpoints(prefs)
	days := tripDays(prefs)

	plan := &types.ItineraryPlan{
		Title:       fmt.Sprintf("从%s到%s的路线", start, end),
		Description: fmt.Sprintf("根据您的要求生成的个性化路线，包含%d天的行程安排。", days),
		Itinerary:   []types.DayPlan{},
		Tips:        []string{},
	}
	if raw.Title != nil {
		if t := strings.TrimSpace(string(*raw.Title)); t != "" && !strings.Contains(strings.ToLower(t), "null") {
			plan.Title = t
		}
	}
	if raw.Description != nil && strings.TrimSpace(string(*raw.Description)) != "" {
		plan.Description = string(*raw.Description)
	}

	prev := 0
	for _, d := range raw.Itinerary.V {
		if !d.OK {
			continue
		}
		if len(plan.Itinerary) >= days {
			break
		}
		day := mapDay(d.V, prev)
		prev = day.Day
		plan.Itinerary = append(plan.Itinerary, day)
	}

	for _, t := range raw.Tips.V {
		if s := strings.TrimSpace(string(t)); s != "" {
			plan.Tips = append(plan.Tips, s)
		}
	}
	if b := raw.BudgetBreakdown.V; b != nil {
		plan.Tips = append(plan.Tips, budgetTip(b))
	}
	if p := raw.PackingList.V; p != nil {
		plan.Tips = append(plan.Tips, packingTip(p))
	}
	if b := raw.BookingAdvice.V; b != nil {
		plan.Tips = append(plan.Tips, bookingTip(b))
	}
	return plan
}

// mapDay keeps source day numbers while they ascend; missing or out-of-order numbers
// continue from the previous day.
func mapDay(d rawDay, prev int) types.DayPlan {
	n := prev + 1
	if d.Day != nil && d.Day.Valid && int(d.Day.Value) > prev {
		n = int(d.Day.Value)
	}

	day := types.DayPlan{
		Day:            n,
		Title:          fmt.Sprintf("第%d天", n),
		Description:    string(d.Description),
		Locations:      []types.Location{},
		Accommodation:  mapAccommodation(d.Accommodation),
		Meals:          []string{},
		Transportation: string(d.Transportation),
		TimeSchedule:   string(d.TimeSchedule),
		DailyBudget:    string(d.DailyBudget),
	}
	if d.Title != nil && strings.TrimSpace(string(*d.Title)) != "" {
		day.Title = string(*d.Title)
	}

	for _, l := range d.Locations.V {
		if !l.OK {
			continue
		}
		name := strings.TrimSpace(string(l.V.Name))
		if name == "" {
			continue
		}
		day.Locations = append(day.Locations, types.Location{
			Name:        name,
			Lat:         l.V.Lat.ptr(),
			Lng:         l.V.Lng.ptr(),
			Description: locationDescription(l.V),
		})
	}
	for _, m := range d.Meals.V {
		if s := strings.TrimSpace(string(m)); s != "" {
			day.Meals = append(day.Meals, s)
		}
	}
	return day
}

func locationDescription(l rawLocation) string {
	original := strings.TrimSpace(string(l.Description))
	var sb strings.Builder
	sb.WriteString(original)
	if p := strings.TrimSpace(string(l.Priority)); p != "" {
		sb.WriteString("\n\n【优先等级】" + p)
	}
	if a := strings.TrimSpace(string(l.Alternative)); a != "" {
		sb.WriteString("\n【替代方案】" + a)
	}
	if m := strings.TrimSpace(string(l.MapLink)); m != "" {
		sb.WriteString("\n【地图链接】" + m)
	}
	if current := sb.String(); !strings.Contains(current, "【注意事项】") && !strings.Contains(current, "注意事项：") {
		if notes := extractNotes(original); notes != "" {
			sb.WriteString("\n【注意事项】" + notes)
		}
	}
	return strings.TrimSpace(sb.String())
}

func mapAccommodation(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] != '{' {
		var s flexString
		_ = json.Unmarshal(raw, &s)
		return string(s)
	}

	var acc rawAccommodation
	if err := json.Unmarshal(raw, &acc); err != nil {
		return ""
	}
	var lines []string
	if acc.Area != nil {
		lines = append(lines, "【推荐住宿区域】"+string(*acc.Area))
	}
	tiers := []struct {
		label string
		v     *rawLodging
	}{
		{"【经济型】", acc.Budget.V},
		{"【舒适型】", acc.Comfort.V},
		{"【豪华型】", acc.Luxury.V},
	}
	for _, t := range tiers {
		if t.v != nil {
			lines = append(lines, fmt.Sprintf("%s%s - %s，%s", t.label, t.v.Name, t.v.Price, t.v.Address))
		}
	}
	return strings.Join(lines, "\n")
}

func budgetTip(b *rawBudgetBreakdown) string {
	lines := []string{"【预算分配建议】"}
	for _, f := range []struct {
		label string
		v     *flexString
	}{
		{"交通", b.Transportation},
		{"住宿", b.Accommodation},
		{"餐饮", b.Meals},
		{"门票", b.Tickets},
		{"其他", b.Other},
		{"总预算范围", b.TotalRange},
	} {
		if f.v != nil {
			lines = append(lines, f.label+"："+string(*f.v))
		}
	}
	return strings.Join(lines, "\n")
}

func packingTip(p *rawPackingList) string {
	lines := []string{"【必备行前准备与打包清单】"}
	for _, f := range []struct {
		label string
		v     lenient[[]flexString]
	}{
		{"证件类", p.Documents},
		{"衣物类", p.Clothing},
		{"用品类", p.Essentials},
		{"其他", p.Other},
	} {
		if f.v.OK {
			lines = append(lines, f.label+"："+joinFlex(f.v.V, "、"))
		}
	}
	return strings.Join(lines, "\n")
}

func bookingTip(b *rawBookingAdvice) string {
	lines := []string{"【预订建议】"}
	if b.Attractions.OK {
		lines = append(lines, "景点预订："+joinFlex(b.Attractions.V, "；"))
	}
	if b.Restaurants.OK {
		lines = append(lines, "餐厅预订："+joinFlex(b.Restaurants.V, "；"))
	}
	if b.Accommodation != nil {
		lines = append(lines, "住宿预订："+string(*b.Accommodation))
	}
	if b.Transportation != nil {
		lines = append(lines, "交通预订："+string(*b.Transportation))
	}
	return strings.Join(lines, "\n")
}

func joinFlex(items []flexString, sep string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it)
	}
	return joinNonEmpty(out, sep)
}

var (
	noteKeywords    = []string{"注意事项", "注意", "温馨提示", "特别提醒"}
	warningKeywords = []string{"不要", "禁止", "请勿", "避免", "需注意"}
)

const maxNoteRunes = 200

// extractNotes pulls the cautionary sentence out of a location description.
func extractNotes(desc string) string {
	if desc == "" {
		return ""
	}

	for _, kw := range noteKeywords {
		idx := strings.Index(desc, kw)
		if idx < 0 {
			continue
		}
		after := strings.TrimSpace(desc[idx+len(kw):])
		after = strings.TrimSpace(trimLeadingAny(after, ":", "："))
		after = strings.TrimSpace(trimLeadingAny(after, ".", "。"))

		end := len(after)
		if i := strings.Index(after, "。"); i > 0 && i < end {
			end = i + len("。")
		}
		if i := strings.Index(after, "\n"); i > 0 && i < end {
			end = i
		}
		if i := strings.Index(after, "."); i > 0 && i < end {
			end = i + 1
		}
		if notes := strings.TrimSpace(after[:end]); notes != "" {
			return notes
		}
	}

	for _, kw := range warningKeywords {
		idx := strings.Index(desc, kw)
		if idx < 0 {
			continue
		}
		start := 0
		before := desc[:idx]
		for _, sep := range []string{"。", "\n", "."} {
			if i := strings.LastIndex(before, sep); i >= 0 && i+len(sep) > start {
				start = i + len(sep)
			}
		}
		end := len(desc)
		for _, sep := range []string{"。", "\n", "."} {
			i := strings.Index(desc[idx:], sep)
			if i < 0 {
				continue
			}
			stop := idx + i
			if sep != "\n" {
				stop += len(sep)
			}
			if stop < end {
				end = stop
			}
		}
		notes := strings.TrimSpace(desc[start:end])
		if notes != "" && utf8.RuneCountInString(notes) < maxNoteRunes {
			return notes
		}
	}
	return ""
}

func trimLeadingAny(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}
