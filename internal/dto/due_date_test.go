package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dueDateBody struct {
	DueDate DueDate `json:"dueDate"`
}

func TestDueDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		set     bool
		want    *time.Time
		wantErr bool
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"dueDate":null}`, set: true},
		{name: "empty string", body: `{"dueDate":""}`, set: true},
		{
			name: "date only",
			body: `{"dueDate":"2030-01-15"}`,
			set:  true,
			want: ptrTime(time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "timestamp with offset",
			body: `{"dueDate":"2030-01-15T09:30:00+02:00"}`,
			set:  true,
			want: ptrTime(time.Date(2030, 1, 15, 7, 30, 0, 0, time.UTC)),
		},
		{name: "garbage", body: `{"dueDate":"soon"}`, wantErr: true},
		{name: "number", body: `{"dueDate":12}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got dueDateBody
			err := json.Unmarshal([]byte(tt.body), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.set, got.DueDate.Set)
			if tt.want == nil {
				assert.Nil(t, got.DueDate.Value)
				return
			}
			require.NotNil(t, got.DueDate.Value)
			assert.True(t, tt.want.Equal(*got.DueDate.Value))
			assert.Equal(t, time.UTC, got.DueDate.Value.Location())
		})
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
