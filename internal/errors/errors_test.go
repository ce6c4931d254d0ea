package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vango-dev/userboard/pkg/api"
	"github.com/vango-dev/userboard/pkg/features/form"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "U100",
			wantMsg: "Cannot read config file",
			wantCat: CategoryConfig,
		},
		{
			name:    "network error",
			code:    "U200",
			wantMsg: "Network error",
			wantCat: CategoryNetwork,
		},
		{
			name:    "unknown error code",
			code:    "U999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown command %q", "frobnicate")
	if err.Message != `unknown command "frobnicate"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want bare message", err.Error())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := New("U100").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("Expected wrapped cause to be found by errors.Is")
	}
}

func TestFromErrorMapsAPIKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"network", api.NewNetworkError("t1", stderrors.New("refused")), "U200"},
		{"timeout", api.NewNetworkError("t1", stderrors.Join(api.ErrTimeout, stderrors.New("deadline"))), "U201"},
		{"validation", api.NewValidationError("t1", nil, stderrors.New("bad json")), "U300"},
		{"not found", api.NewNotFoundError("t1", &api.ProblemDetail{Title: "Not Found", Status: 404}), "U400"},
		{"plain", stderrors.New("boom"), "U900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := FromError(tt.err, "U900")
			if ce.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", ce.Code, tt.wantCode)
			}
			if !stderrors.Is(ce, tt.err) {
				t.Error("Expected original error to stay reachable")
			}
		})
	}
}

func TestFromErrorCarriesTraceAndDetail(t *testing.T) {
	err := api.NewNotFoundError("4bf92f3577b34da6a3ce929d0e0e4736", &api.ProblemDetail{
		Title:  "Not Found",
		Status: 404,
		Detail: "user 42 does not exist",
	})

	ce := FromError(err, "U900")
	if ce.TraceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("TraceID = %q", ce.TraceID)
	}
	if ce.Detail != "user 42 does not exist" {
		t.Errorf("Detail = %q", ce.Detail)
	}
}

func TestFromErrorFieldMessages(t *testing.T) {
	errs := form.Errors{}
	errs.Add("email", "Invalid email address")
	err := api.NewValidationError("", nil, errs.Err())

	ce := FromError(err, "U900")
	if ce.Code != "U301" {
		t.Fatalf("Code = %q, want U301", ce.Code)
	}
	if got := ce.Fields["email"]; len(got) != 1 || got[0] != "Invalid email address" {
		t.Errorf("Fields = %v", ce.Fields)
	}
}

func TestFromErrorKeepsCLIError(t *testing.T) {
	orig := New("U500")
	if FromError(orig, "U900") != orig {
		t.Error("Expected CLIError to be returned unchanged")
	}
	if FromError(nil, "U900") != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	ce := New("U301").WithTraceID("abc")
	ce.Fields = map[string][]string{
		"name":  {"Name is required"},
		"email": {"Invalid email address"},
	}

	out := ce.Format()
	for _, want := range []string{
		"ERROR U301: Invalid input",
		"email: Invalid email address",
		"name: Name is required",
		"Hint: Fix the listed fields and try again",
		"Trace: abc",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "email:") > strings.Index(out, "name:") {
		t.Error("Expected fields in sorted order")
	}
}

func TestFormatCompact(t *testing.T) {
	got := New("U200").WithTraceID("abc").FormatCompact()
	if got != "U200: Network error (trace abc)" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(New("U400").WithTraceID("abc").FormatJSON()), &decoded); err != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", err)
	}
	if decoded["code"] != "U400" || decoded["category"] != "not_found" || decoded["traceId"] != "abc" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("PrintError() = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, New("U201"))
	if !strings.Contains(buf.String(), "U201: Request timed out") {
		t.Errorf("PrintError() = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line longer than 20: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("Expected nil for empty text")
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("U201"); !ok {
		t.Error("Expected U201 to be registered")
	}
	if _, ok := Lookup("E001"); ok {
		t.Error("Expected E001 to be unknown")
	}
}
