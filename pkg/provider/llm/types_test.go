package llm

import "testing"

func TestCutAtStop(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		stop []string
		want string
	}{
		{"no stops", "hello there", nil, "hello there"},
		{"single stop", "hello END there", []string{"END"}, "hello "},
		{"earliest of several", "a STOP b HALT c", []string{"HALT", "STOP"}, "a "},
		{"stop not present", "untouched", []string{"END"}, "untouched"},
		{"empty stop ignored", "untouched", []string{""}, "untouched"},
		{"stop at start", "END rest", []string{"END"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CutAtStop(tc.text, tc.stop); got != tc.want {
				t.Errorf("CutAtStop(%q, %v) = %q, want %q", tc.text, tc.stop, got, tc.want)
			}
		})
	}
}
