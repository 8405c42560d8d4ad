//go:build !js_eval

package svh

import "testing"

func TestJSEvaluatorUnavailableWithoutTag(t *testing.T) {
	if jsEvaluatorAvailable() {
		t.Fatalf("expected js evaluator to be unavailable")
	}
	if NewJSEvaluator() != nil {
		t.Fatalf("expected nil evaluator without the js_eval build tag")
	}
}
