package hotkey

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Accel
		wantErr bool
	}{
		{
			name:  "default combination",
			input: "ctrl+alt+m",
			want:  Accel{Mods: []Modifier{ModCtrl, ModAlt}, Key: "m"},
		},
		{
			name:  "case insensitive",
			input: "Ctrl+Shift+U",
			want:  Accel{Mods: []Modifier{ModCtrl, ModShift}, Key: "u"},
		},
		{
			name:  "modifier aliases",
			input: "control+super+f5",
			want:  Accel{Mods: []Modifier{ModCtrl, ModWin}, Key: "f5"},
		},
		{
			name:  "bare key",
			input: "f12",
			want:  Accel{Key: "f12"},
		},
		{
			name:  "whitespace tolerated",
			input: " ctrl + alt + space ",
			want:  Accel{Mods: []Modifier{ModCtrl, ModAlt}, Key: "space"},
		},
		{
			name:    "no key",
			input:   "ctrl+alt",
			wantErr: true,
		},
		{
			name:    "key not last",
			input:   "ctrl+m+alt",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "dangling separator",
			input:   "ctrl+",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
