package tools

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestResultSuccessSerialization(t *testing.T) {
	r := OK().
		With("filePath", "/out/report.pdf").
		With("pageCount", 3)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["success"] != true {
		t.Errorf("success = %v", payload["success"])
	}
	if payload["filePath"] != "/out/report.pdf" {
		t.Errorf("filePath = %v", payload["filePath"])
	}
	if payload["pageCount"] != float64(3) {
		t.Errorf("pageCount = %v", payload["pageCount"])
	}
}

func TestResultFailureSerialization(t *testing.T) {
	r := Failf("cannot open %s", "/missing.docx")

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["success"] != false {
		t.Errorf("success = %v", payload["success"])
	}
	if payload["error"] != "cannot open /missing.docx" {
		t.Errorf("error = %v", payload["error"])
	}
}

func TestResultDeterministicOrder(t *testing.T) {
	build := func() Result {
		return OK().With("zeta", 1).With("alpha", 2).With("mid", 3)
	}

	first, err := json.Marshal(build())
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(build())
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("serialization not deterministic:\n%s\n%s", first, second)
	}
	if !strings.HasPrefix(string(first), `{"success":true`) {
		t.Errorf("success flag should lead the payload: %s", first)
	}
}

func TestWithOnFailureIsNoop(t *testing.T) {
	r := Fail("broken").With("ignored", 1)
	if !r.IsError() {
		t.Error("failure variant lost after With")
	}
	if _, ok := r.Field("ignored"); ok {
		t.Error("With on a failure should not attach fields")
	}
}

func TestSerializeUnserializableField(t *testing.T) {
	r := OK().With("bad", func() {})

	text := r.serialize()
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("fallback serialization must still be valid JSON: %v\n%s", err, text)
	}
	if payload["success"] != false {
		t.Error("unserializable result should degrade to a failure shape")
	}
}
