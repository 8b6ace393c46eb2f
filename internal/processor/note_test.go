package processor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeNote(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Note
		wantErr error
	}{
		{
			name: "nested response",
			body: `{"model":"llama3","response":"{\"title\":\"Weekly Sync\",\"key_points\":[\"A\",\"B\"]}","done":true}`,
			want: Note{Title: "Weekly Sync", KeyPoints: TextList{"A", "B"}},
		},
		{
			name: "nested response inside a code fence",
			body: "{\"response\":\"```json\\n{\\\"title\\\":\\\"T\\\"}\\n```\"}",
			want: Note{Title: "T"},
		},
		{
			name: "direct payload",
			body: `{"title":"T","transcript":"raw"}`,
			want: Note{Title: "T", Transcript: "raw"},
		},
		{
			name: "non-string response field falls back to body",
			body: `{"response":{"ignored":true},"title":"Top"}`,
			want: Note{Title: "Top"},
		},
		{
			name: "loose list types",
			body: `{"title":"T","key_points":["a",2,null,{"k":"v"}],"action_items":"single item"}`,
			want: Note{Title: "T", KeyPoints: TextList{"a", "2", `{"k":"v"}`}, ActionItems: TextList{"single item"}},
		},
		{
			name: "null lists",
			body: `{"title":"T","key_points":null,"action_items":[]}`,
			want: Note{Title: "T", ActionItems: TextList{}},
		},
		{
			name:    "array body",
			body:    `["title"]`,
			wantErr: ErrParse,
		},
		{
			name:    "wrong title type",
			body:    `{"title":42}`,
			wantErr: ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeNote([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeNote() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decodeNote() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResult(t *testing.T) {
	ok := Success(Transcript(""))
	if !ok.OK() || ok.Err != nil || ok.Payload == nil {
		t.Errorf("Success = %+v", ok)
	}

	fail := Failure(ErrTimeout)
	if fail.OK() || fail.Payload != nil || !errors.Is(fail.Err, ErrTimeout) {
		t.Errorf("Failure = %+v", fail)
	}
}
