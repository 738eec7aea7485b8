package service

import (
	"errors"
	"strings"
	"testing"
)

func validInput() SubmitApplicationInput {
	return SubmitApplicationInput{
		Name:        "Amira Hassan",
		Email:       "Amira@Example.com",
		Phone:       "01012345678",
		Age:         "24",
		Governorate: "Cairo",
		Education:   "BA Political Science",
		Motivation:  "I want to serve my country and grow my skills.",
	}
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError for %s, got %v", field, err)
	}
	if verr.Field != field {
		t.Fatalf("expected field %q, got %q", field, verr.Field)
	}
}

func TestValidate_ValidInputNormalized(t *testing.T) {
	in := validInput()
	in.Name = "  Amira Hassan  "
	in.Email = "  Amira@Example.com "
	in.Phone = " 01012345678 "
	in.Governorate = " Cairo "
	in.Education = "\tBA Political Science\n"
	in.Motivation = "  I want to serve my country and grow my skills.  "
	exp := "  Model UN delegate  "
	in.Experience = &exp

	app, err := validate(in)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if app.Name != "Amira Hassan" {
		t.Errorf("Name = %q", app.Name)
	}
	if app.Email != "amira@example.com" {
		t.Errorf("Email = %q", app.Email)
	}
	if app.Phone != "01012345678" {
		t.Errorf("Phone = %q", app.Phone)
	}
	if app.Age != 24 {
		t.Errorf("Age = %d", app.Age)
	}
	if app.Governorate != "Cairo" || app.Education != "BA Political Science" {
		t.Errorf("Governorate/Education not trimmed: %q / %q", app.Governorate, app.Education)
	}
	if app.Motivation != "I want to serve my country and grow my skills." {
		t.Errorf("Motivation = %q", app.Motivation)
	}
	if app.Experience == nil || *app.Experience != "Model UN delegate" {
		t.Errorf("Experience = %v", app.Experience)
	}
	if app.ID != "" {
		t.Errorf("validate must not assign an ID, got %q", app.ID)
	}
}

func TestValidate_ExperienceNormalizedToAbsent(t *testing.T) {
	empty := ""
	blank := "   "

	tests := []struct {
		name       string
		experience *string
	}{
		{"absent", nil},
		{"empty", &empty},
		{"whitespace only", &blank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Experience = tt.experience

			app, err := validate(in)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if app.Experience != nil {
				t.Fatalf("expected nil experience, got %q", *app.Experience)
			}
		})
	}
}

func TestValidate_NameBoundaries(t *testing.T) {
	tests := []struct {
		length int
		valid  bool
	}{
		{2, false},
		{3, true},
		{100, true},
		{101, false},
	}

	for _, tt := range tests {
		in := validInput()
		in.Name = strings.Repeat("a", tt.length)

		_, err := validate(in)
		if tt.valid && err != nil {
			t.Errorf("name length %d: unexpected error %v", tt.length, err)
		}
		if !tt.valid {
			assertFieldError(t, err, FieldName)
		}
	}
}

func TestValidate_NameCountsCharactersNotBytes(t *testing.T) {
	in := validInput()
	in.Name = "أمل" // 3 letters, 6 bytes

	if _, err := validate(in); err != nil {
		t.Fatalf("three-letter Arabic name rejected: %v", err)
	}

	in.Name = strings.Repeat("م", 100)
	if _, err := validate(in); err != nil {
		t.Fatalf("100-letter Arabic name rejected: %v", err)
	}
}

func TestValidate_NameLengthAfterTrim(t *testing.T) {
	in := validInput()
	in.Name = "  ab  "

	_, err := validate(in)
	assertFieldError(t, err, FieldName)
}

func TestValidate_MotivationBoundaries(t *testing.T) {
	tests := []struct {
		length int
		valid  bool
	}{
		{19, false},
		{20, true},
		{1000, true},
		{1001, false},
	}

	for _, tt := range tests {
		in := validInput()
		in.Motivation = strings.Repeat("m", tt.length)

		_, err := validate(in)
		if tt.valid && err != nil {
			t.Errorf("motivation length %d: unexpected error %v", tt.length, err)
		}
		if !tt.valid {
			assertFieldError(t, err, FieldMotivation)
		}
	}
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"amira@example.com", true},
		{"a.b+c@sub.example.org", true},
		{" amira@example.com ", true},
		{"", false},
		{"amira", false},
		{"amira@example", false},
		{"@example.com", false},
		{"amira@.", false},
		{"am ira@example.com", false},
		{"amira@exa mple.com", false},
		{"amira@@example.com", false},
		{"ami\u00a0ra@example.com", false},
		{"ami\u2003ra@example.com", false},
		{"ami\u3000ra@example.com", false},
		{"ami\u000bra@example.com", false},
		{"ami\ufeffra@example.com", false},
		{"amira@example\u2028.com", false},
		{"\u00a0amira@example.com\u3000", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			in := validInput()
			in.Email = tt.email

			_, err := validate(in)
			if tt.valid && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !tt.valid {
				assertFieldError(t, err, FieldEmail)
			}
		})
	}
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"01012345678", true},
		{"01112345678", true},
		{"01212345678", true},
		{"01512345678", true},
		{"01312345678", false},
		{"01412345678", false},
		{"0101234567", false},
		{"010123456789", false},
		{"+201012345678", false},
		{"02012345678", false},
		{"0101234567a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			in := validInput()
			in.Phone = tt.phone

			_, err := validate(in)
			if tt.valid && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !tt.valid {
				assertFieldError(t, err, FieldPhone)
			}
		})
	}
}

func TestValidate_Age(t *testing.T) {
	tests := []struct {
		age   string
		valid bool
		want  int
	}{
		{"16", true, 16},
		{"35", true, 35},
		{"24", true, 24},
		{" 24", true, 24},
		{"24 years", true, 24},
		{"+20", true, 20},
		{"15", false, 0},
		{"36", false, 0},
		{"40", false, 0},
		{"-20", false, 0},
		{"", false, 0},
		{"abc", false, 0},
		{"twenty", false, 0},
		{"99999999999999999999999", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			in := validInput()
			in.Age = tt.age

			app, err := validate(in)
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if app.Age != tt.want {
					t.Fatalf("Age = %d, want %d", app.Age, tt.want)
				}
				return
			}
			assertFieldError(t, err, FieldAge)
		})
	}
}

func TestValidate_GovernorateAndEducationMinimum(t *testing.T) {
	in := validInput()
	in.Governorate = "G"
	_, err := validate(in)
	assertFieldError(t, err, FieldGovernorate)

	in = validInput()
	in.Governorate = "Gz"
	if _, err := validate(in); err != nil {
		t.Fatalf("two-letter governorate rejected: %v", err)
	}

	in = validInput()
	in.Education = " x "
	_, err = validate(in)
	assertFieldError(t, err, FieldEducation)
}

func TestValidate_ReportsFirstFailingFieldInOrder(t *testing.T) {
	in := SubmitApplicationInput{}

	_, err := validate(in)
	assertFieldError(t, err, FieldName)

	in.Name = "Amira Hassan"
	_, err = validate(in)
	assertFieldError(t, err, FieldEmail)

	in.Email = "amira@example.com"
	_, err = validate(in)
	assertFieldError(t, err, FieldPhone)

	in.Phone = "01012345678"
	_, err = validate(in)
	assertFieldError(t, err, FieldAge)

	in.Age = "20"
	_, err = validate(in)
	assertFieldError(t, err, FieldGovernorate)

	in.Governorate = "Giza"
	_, err = validate(in)
	assertFieldError(t, err, FieldEducation)

	in.Education = "Engineering"
	_, err = validate(in)
	assertFieldError(t, err, FieldMotivation)
}

func TestValidationError_Message(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{FieldName, "Invalid name"},
		{FieldEmail, "Invalid email"},
		{FieldPhone, "Invalid phone number"},
		{FieldAge, "Invalid age"},
		{FieldMotivation, "Invalid motivation"},
	}

	for _, tt := range tests {
		err := &ValidationError{Field: tt.field}
		if got := err.Message(); got != tt.want {
			t.Errorf("Message(%s) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"24", 24, true},
		{"\t 7", 7, true},
		{"24.9", 24, true},
		{"-3", -3, true},
		{"", 0, false},
		{"-", 0, false},
		{"x24", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseAge(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAge(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Amira@Example.COM "); got != "amira@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
