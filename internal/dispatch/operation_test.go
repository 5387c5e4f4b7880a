package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/preston-bernstein/f1-data-service/internal/request"
	"github.com/preston-bernstein/f1-data-service/internal/store"
)

func TestParseOperation(t *testing.T) {
	for code, want := range []string{"GET", "CREATE", "UPDATE", "DELETE", "PATCH"} {
		op, err := ParseOperation(code)
		if err != nil {
			t.Fatalf("code %d: unexpected error %v", code, err)
		}
		if op.String() != want {
			t.Fatalf("code %d: expected %s, got %s", code, want, op)
		}
	}
	for _, code := range []int{-1, 5, 42} {
		_, err := ParseOperation(code)
		de, ok := AsError(err)
		if !ok || de.Kind != KindUsage {
			t.Fatalf("code %d: expected usage error, got %v", code, err)
		}
	}
}

func TestOperationMutates(t *testing.T) {
	if OpGet.Mutates() {
		t.Fatalf("GET must not mutate")
	}
	for _, op := range []Operation{OpCreate, OpUpdate, OpDelete, OpPatch} {
		if !op.Mutates() {
			t.Fatalf("%s should mutate", op)
		}
	}
	if Operation(9).Mutates() || Operation(9).String() != "Operation(9)" {
		t.Fatalf("unexpected handling of unknown operation")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{fmt.Errorf("%w: gone", request.ErrNotFound), KindInput},
		{fmt.Errorf("%w: bad", request.ErrInvalid), KindInput},
		{&store.Error{Op: "read", Err: errors.New("denied")}, KindStore},
		{notFoundError(msgTeamNotFound), KindNotFound},
		{errors.New("other"), KindStore},
	}
	for _, tc := range cases {
		if got := classify(tc.err); got.Kind != tc.kind {
			t.Fatalf("%v: expected %v, got %v", tc.err, tc.kind, got.Kind)
		}
	}
	if classify(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	if got := classify(fmt.Errorf("%w: gone", request.ErrNotFound)).Message; got != "File not found" {
		t.Fatalf("expected fixed message for missing request file, got %q", got)
	}
}

func TestParseNotFoundFormat(t *testing.T) {
	if ParseNotFoundFormat("JSON") != NotFoundJSON {
		t.Fatalf("expected json format")
	}
	for _, raw := range []string{"", "legacy", "xml"} {
		if ParseNotFoundFormat(raw) != NotFoundLegacy {
			t.Fatalf("expected legacy for %q", raw)
		}
	}
}

func TestFailureRendersErrorBody(t *testing.T) {
	res := Failure(KindUsage, `required flag(s) "option" not set`)
	if res.OK() || res.ExitCode != 1 {
		t.Fatalf("expected failed result with exit 1, got %+v", res)
	}
	if res.Err.Kind != KindUsage {
		t.Fatalf("expected usage kind, got %s", res.Err.Kind)
	}
	want := "{\n    \"error\": \"required flag(s) \\\"option\\\" not set\"\n}\n"
	if string(res.Body) != want {
		t.Fatalf("unexpected body %q", res.Body)
	}
}
