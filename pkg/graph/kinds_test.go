package graph

import "testing"

func TestKindsRegistry(t *testing.T) {
	want := map[Category][]string{
		CategoryGeneral:       {"note", "step", "user", "message", "group"},
		CategoryApplication:   {"loadBalancer", "gateway", "service"},
		CategoryDatabase:      {"mysql", "postgresql", "redis", "oceanbase"},
		CategoryStorage:       {"minio"},
		CategoryMiddleware:    {"kafka", "rocketmq"},
		CategoryObservability: {"prometheus", "grafana", "elasticsearch"},
		CategoryCoordination:  {"zookeeper", "nacos"},
	}

	got := make(map[Category][]string)
	for _, k := range Kinds() {
		got[k.Category] = append(got[k.Category], k.Type)
	}

	for _, c := range Categories() {
		if len(got[c]) != len(want[c]) {
			t.Errorf("category %s = %v, want %v", c, got[c], want[c])
			continue
		}
		for i := range want[c] {
			if got[c][i] != want[c][i] {
				t.Errorf("category %s[%d] = %s, want %s", c, i, got[c][i], want[c][i])
			}
		}
	}
}

func TestLookupKind(t *testing.T) {
	tests := []struct {
		kind       string
		wantOK     bool
		wantRender NodeType
	}{
		{"service", true, NodeTypeCustom},
		{"note", true, NodeTypeNote},
		{"group", true, NodeTypeGroup},
		{"quantum", false, ""},
	}
	for _, tt := range tests {
		k, ok := LookupKind(tt.kind)
		if ok != tt.wantOK || k.Render != tt.wantRender {
			t.Errorf("LookupKind(%s) = %v, %v, want render %v, %v", tt.kind, k.Render, ok, tt.wantRender, tt.wantOK)
		}
	}
}

func TestResolveKindFallback(t *testing.T) {
	k := ResolveKind("quantum")
	if k.Label != FallbackLabel || k.Render != NodeTypeCustom {
		t.Errorf("ResolveKind(quantum) = %+v", k)
	}
}

func TestKindStyles(t *testing.T) {
	group, _ := LookupKind(KindGroup)
	if group.Style.BackgroundColor != "rgba(240, 244, 255, 0.3)" || group.Style.BorderColor != "#3b82f6" {
		t.Errorf("group style = %+v", group.Style)
	}

	step, _ := LookupKind("step")
	if step.Style.ContainerBg != "transparent" {
		t.Errorf("step ContainerBg = %q, want transparent", step.Style.ContainerBg)
	}

	redis, _ := LookupKind("redis")
	if redis.Style != CategoryStyle(CategoryDatabase) {
		t.Errorf("redis style = %+v, want database default", redis.Style)
	}
}

func TestEffectiveStyle(t *testing.T) {
	n := &Node{Data: NodeData{Kind: "kafka", Style: &StyleOverrides{BorderColor: "#111"}}}

	s := EffectiveStyle(n)

	if s.BorderColor != "#111" {
		t.Errorf("BorderColor = %q, want override", s.BorderColor)
	}
	if s.Color != CategoryStyle(CategoryMiddleware).Color {
		t.Errorf("Color = %q, want category default", s.Color)
	}
}
