package poi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name string
		rec  types.ContentRecord
		want types.POICategory
	}{
		{"exhibit is always museum", types.ContentRecord{Type: types.ContentTypeExhibit, Title: "交河故城"}, types.CategoryMuseum},
		{"heritage video", types.ContentRecord{Type: types.ContentTypeVideo, Title: "木卡姆非遗展演"}, types.CategoryHeritage},
		{"video falls through to keywords", types.ContentRecord{Type: types.ContentTypeVideo, Title: "高昌故城航拍"}, types.CategoryRelic},
		{"museum keyword in title", types.ContentRecord{Type: types.ContentTypeArticle, Title: "吐鲁番博物馆"}, types.CategoryMuseum},
		{"museum beats relic", types.ContentRecord{Title: "楼兰遗址纪念馆"}, types.CategoryMuseum},
		{"relic beats heritage", types.ContentRecord{Title: "古城里的非遗工坊"}, types.CategoryRelic},
		{"case insensitive english", types.ContentRecord{Title: "Xinjiang MUSEUM"}, types.CategoryMuseum},
		{"keyword in tags", types.ContentRecord{Title: "艾德莱斯绸", Tags: []string{"非物质文化遗产"}}, types.CategoryHeritage},
		{"keyword in description", types.ContentRecord{Title: "北庭", Description: "唐代北庭都护府旧址"}, types.CategoryRelic},
		{"default scenic", types.ContentRecord{Title: "赛里木湖", Tags: []string{"湖泊"}}, types.CategoryScenic},
		{"empty record", types.ContentRecord{}, types.CategoryScenic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCategory(tt.rec)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ResolveCategory(tt.rec))
			assert.Contains(t, types.AllCategories, got)
		})
	}
}
