package cli

import (
	"testing"

	"github.com/felixgeelhaar/memoryplanner/internal/planning/application/queries"
	"github.com/felixgeelhaar/memoryplanner/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchItem(t *testing.T) {
	first := uuid.MustParse("1a2b0000-0000-0000-0000-000000000001")
	second := uuid.MustParse("1a2c0000-0000-0000-0000-000000000002")
	pause := uuid.MustParse("1a2d0000-0000-0000-0000-000000000003")
	items := []queries.PlanItemDTO{
		{ID: first, Type: string(domain.ItemTypeSubstep), Title: "outline"},
		{ID: second, Type: string(domain.ItemTypeCustomActivity), Title: "piano"},
		{ID: pause, Type: string(domain.ItemTypeBreak), Title: "Break"},
	}

	tests := []struct {
		name    string
		prefix  string
		want    uuid.UUID
		wantErr string
	}{
		{name: "unique prefix", prefix: "1a2b", want: first},
		{name: "upper case", prefix: "1A2C", want: second},
		{name: "ambiguous", prefix: "1a2", wantErr: "matches several items"},
		{name: "breaks are skipped", prefix: "1a2d", wantErr: "no plan item matches"},
		{name: "empty", prefix: " ", wantErr: "missing item id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchItem(items, tt.prefix)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
