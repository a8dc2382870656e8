package testkit

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int, body string) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch\nbody: %s", scenario.Name, body)
}

// AssertJSONSubset checks that every key and value of expected also appears
// in actual. Extra keys in actual (ids, timestamps, urls) are ignored, and
// arrays must match element by element.
func AssertJSONSubset(t *testing.T, name string, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", name, string(actual)) {
		return
	}

	if diff := subset("$", expVal, actVal); diff != "" {
		t.Errorf("[%s] response body mismatch at %s\nbody: %s", name, diff, string(actual))
	}
}

// subset returns the path of the first mismatch, or "".
func subset(path string, exp, act interface{}) string {
	switch e := exp.(type) {
	case map[string]interface{}:
		a, ok := act.(map[string]interface{})
		if !ok {
			return path
		}
		for k, v := range e {
			av, ok := a[k]
			if !ok {
				return path + "." + k
			}
			if d := subset(path+"."+k, v, av); d != "" {
				return d
			}
		}
		return ""
	case []interface{}:
		a, ok := act.([]interface{})
		if !ok || len(a) != len(e) {
			return path
		}
		for i := range e {
			if d := subset(fmt.Sprintf("%s[%d]", path, i), e[i], a[i]); d != "" {
				return d
			}
		}
		return ""
	default:
		if fmt.Sprint(exp) != fmt.Sprint(act) {
			return path
		}
		return ""
	}
}
