package observability

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "telaris.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	expected := map[string]map[string]string{
		"jobs": {
			"TelarisJobFailures": "warning",
			"TelarisJobStalled":  "warning",
		},
		"http": {
			"TelarisHTTPErrorRate": "critical",
			"TelarisHTTPLatency":   "warning",
		},
	}

	if len(spec.Groups) != len(expected) {
		t.Fatalf("expected %d alert groups, got %d", len(expected), len(spec.Groups))
	}

	for _, group := range spec.Groups {
		want, ok := expected[group.Name]
		if !ok {
			t.Fatalf("unexpected alert group %q", group.Name)
		}
		if len(group.Rules) != len(want) {
			t.Fatalf("group %s: expected %d rules, got %d", group.Name, len(want), len(group.Rules))
		}
		for _, rule := range group.Rules {
			severity, ok := want[rule.Alert]
			if !ok {
				t.Fatalf("unexpected rule %q in group %s", rule.Alert, group.Name)
			}
			if rule.Labels["severity"] != severity {
				t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
			}
			if rule.Annotations["summary"] == "" || rule.Annotations["description"] == "" {
				t.Fatalf("rule %s must include summary and description annotations", rule.Alert)
			}
			if rule.Expr == "" {
				t.Fatalf("rule %s must define an expression", rule.Alert)
			}
			if rule.For == "" {
				t.Fatalf("rule %s must define a hold duration", rule.Alert)
			}
		}
	}
}
