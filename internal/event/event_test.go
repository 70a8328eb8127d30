package event

import "testing"

func TestToMap_IncludesSystemAndTypedFields(t *testing.T) {
	e := Event{
		System:    System{TenantID: "t1", BotID: "b1", Source: SourceWebhook, Type: TypeText},
		EventText: "hello",
	}
	m := e.ToMap()

	sys, ok := m["system"].(map[string]any)
	if !ok {
		t.Fatal("system should be a map")
	}
	if sys["tenant_id"] != "t1" || sys["bot_id"] != "b1" {
		t.Errorf("system = %v", sys)
	}
	if m["event_text"] != "hello" {
		t.Errorf("event_text = %v, want hello", m["event_text"])
	}
}

func TestToMap_DataDoesNotShadowNamedFields(t *testing.T) {
	e := Event{
		EventText: "named",
		Data:      map[string]any{"event_text": "shadowed", "extra": 1},
	}
	m := e.ToMap()
	if m["event_text"] != "named" {
		t.Errorf("event_text = %v, want named (named field must win)", m["event_text"])
	}
	if m["extra"] != 1 {
		t.Errorf("extra = %v, want 1", m["extra"])
	}
}

func TestContext_ToMap_IncludesOverlays(t *testing.T) {
	ctx := NewContext(Event{EventText: "x"})
	ctx.Cache["k"] = "v"
	ctx.Config["token"] = "secret"
	ctx.Steps[0] = map[string]any{"result": "success"}

	m := ctx.ToMap()
	if cache, ok := m["_cache"].(map[string]any); !ok || cache["k"] != "v" {
		t.Errorf("_cache = %v", m["_cache"])
	}
	if cfg, ok := m["_config"].(map[string]any); !ok || cfg["token"] != "secret" {
		t.Errorf("_config = %v", m["_config"])
	}
	steps, ok := m["_steps"].(map[string]any)
	if !ok {
		t.Fatal("_steps should be a map")
	}
	if _, ok := steps["0"]; !ok {
		t.Error("_steps should key step 0 as \"0\"")
	}
}
