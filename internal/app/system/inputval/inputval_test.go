package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user123@example.co.uk", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/embed/zMYRU4S_C0o", true},
		{"http://example.com/video", true},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"www.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type moduleInput struct {
		Title    string `validate:"notblank,max=10" label:"Title"`
		Email    string `validate:"omitempty,email" label:"Email"`
		Icon     string `validate:"iconname" label:"Icon"`
		VideoURL string `validate:"omitempty,embedurl" label:"Video URL"`
		Birth    string `validate:"omitempty,birthdate" label:"Birth date"`
	}

	tests := []struct {
		name      string
		input     moduleInput
		wantFirst string
	}{
		{"valid", moduleInput{Title: "History", Icon: "StarIcon"}, ""},
		{"blank title", moduleInput{Title: "   ", Icon: "StarIcon"}, "Title is required."},
		{"long title", moduleInput{Title: "A very long title", Icon: "StarIcon"}, "Title must be at most 10 characters."},
		{"bad email", moduleInput{Title: "x", Email: "nope", Icon: "StarIcon"}, "A valid email address is required."},
		{"unknown icon", moduleInput{Title: "x", Icon: "RocketIcon"}, "Icon must be one of the available icons."},
		{"bad video", moduleInput{Title: "x", Icon: "StarIcon", VideoURL: "javascript:1"}, "Video URL must be an http or https URL."},
		{"bad birth date", moduleInput{Title: "x", Icon: "StarIcon", Birth: "31/12/2000"}, "Birth date must be a date (YYYY-MM-DD)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.input)
			if r.HasErrors() != (tt.wantFirst != "") {
				t.Fatalf("HasErrors = %v, errors %v", r.HasErrors(), r.Errors)
			}
			if r.First() != tt.wantFirst {
				t.Errorf("First() = %q, want %q", r.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{}
	if r.All() != "" {
		t.Errorf("All() = %q, want empty", r.All())
	}
	r.Errors = []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}
	if want := "Error 1; Error 2"; r.All() != want {
		t.Errorf("All() = %q, want %q", r.All(), want)
	}
}
