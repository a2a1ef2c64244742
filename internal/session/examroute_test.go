package session

import "testing"

func TestIsExamRoute(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"", false},
		{"/", false},
		{"/dashboard", false},
		{"/exam", true},
		{"/exam/", true},
		{"/exam/abc-123", true},
		{"/exam/abc-123/question/4", true},
		{"/exam/abc-123?tab=2", true},
		{"/exam/abc-123#q4", true},
		{"/examinations", false},
		{"/admin/exam/abc-123", false},
		{"/exams", false},
		{"/exam?id=7", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsExamRoute(tt.path); got != tt.want {
				t.Errorf("IsExamRoute(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
