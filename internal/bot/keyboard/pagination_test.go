package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
)

type mockTranslator map[string]string

func (m mockTranslator) T(key string) string {
	if val, ok := m[key]; ok {
		return val
	}
	return key
}

func (mockTranslator) Lang() string { return "en" }

func TestPaginate(t *testing.T) {
	tests := []struct {
		name             string
		total, per, page int
		want             keyboard.Page
	}{
		{"empty list", 0, 10, 1, keyboard.Page{Number: 1, Count: 1}},
		{"exact fit", 10, 10, 1, keyboard.Page{Number: 1, Count: 1, Start: 0, End: 10}},
		{"second page", 25, 10, 2, keyboard.Page{Number: 2, Count: 3, Start: 10, End: 20}},
		{"short last page", 25, 10, 3, keyboard.Page{Number: 3, Count: 3, Start: 20, End: 25}},
		{"clamped high", 25, 10, 9, keyboard.Page{Number: 3, Count: 3, Start: 20, End: 25}},
		{"clamped low", 25, 10, -4, keyboard.Page{Number: 1, Count: 3, Start: 0, End: 10}},
		{"no page size", 5, 0, 1, keyboard.Page{Number: 1, Count: 1, Start: 0, End: 5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, keyboard.Paginate(tc.total, tc.per, tc.page))
		})
	}
}

func TestPage_Buttons(t *testing.T) {
	tr := mockTranslator{
		"pagination.prev": "◀️ Prev",
		"pagination.next": "Next ▶️",
		"pagination.page": "Page {{.Page}}/{{.Total}}",
	}

	tests := []struct {
		name      string
		page      int
		wantTexts []string
		wantData  []string
	}{
		{"first", 1, []string{"Page 1/5", "Next ▶️"}, []string{"1", "2"}},
		{"middle", 3, []string{"◀️ Prev", "Page 3/5", "Next ▶️"}, []string{"2", "3", "4"}},
		{"last", 5, []string{"◀️ Prev", "Page 5/5"}, []string{"4", "5"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buttons := keyboard.Paginate(50, 10, tc.page).Buttons(tr, "lb")
			require.Len(t, buttons, len(tc.wantTexts))
			for i := range buttons {
				assert.Equal(t, tc.wantTexts[i], buttons[i].Text)
				assert.Equal(t, "lb", buttons[i].Action)
				assert.Equal(t, tc.wantData[i], buttons[i].Data)
			}
		})
	}
}

func TestPage_ButtonsFallbacks(t *testing.T) {
	assert.Empty(t, keyboard.Paginate(3, 10, 1).Buttons(nil, "lb"))

	buttons := keyboard.Paginate(20, 10, 2).Buttons(nil, "lb")
	require.Len(t, buttons, 2)
	assert.Equal(t, "◀️", buttons[0].Text)
	assert.Equal(t, "2/2", buttons[1].Text)
}
