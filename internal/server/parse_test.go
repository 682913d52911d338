package server

import (
	"encoding/json"
	"testing"
)

func TestParseTab(t *testing.T) {
	raw := `{
		"type": "tab.updated",
		"tab": {"id": 7, "url": "https://example.com", "title": "Example", "status": "complete", "windowId": 1, "index": 0, "favIconUrl": "https://example.com/favicon.ico"}
	}`

	var msg IncomingMsg
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatal(err)
	}
	tab, err := ParseTab(msg.Tab)
	if err != nil {
		t.Fatal(err)
	}
	if tab.BrowserID != 7 || tab.URL != "https://example.com" || tab.Title != "Example" {
		t.Errorf("tab = %+v", tab)
	}
	if !tab.Complete() {
		t.Error("expected complete status")
	}
}

func TestParseTabLoading(t *testing.T) {
	tab, err := ParseTab(json.RawMessage(`{"id": 3, "url": "https://a", "status": "loading"}`))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Complete() {
		t.Error("loading tab reported complete")
	}
}

func TestParseTabErrors(t *testing.T) {
	for _, raw := range []string{"", "not json", `[1,2]`} {
		if _, err := ParseTab(json.RawMessage(raw)); err == nil {
			t.Errorf("ParseTab(%q) succeeded", raw)
		}
	}
}

func TestIncomingMsgSucceeded(t *testing.T) {
	var ok, failed, bare IncomingMsg
	json.Unmarshal([]byte(`{"id":"cmd-1","ok":true,"tabId":12}`), &ok)
	json.Unmarshal([]byte(`{"id":"cmd-2","ok":false,"error":"no such tab"}`), &failed)
	json.Unmarshal([]byte(`{"type":"tab.removed","tabId":12}`), &bare)

	if !ok.Succeeded() || ok.TabID != 12 {
		t.Errorf("ok = %+v", ok)
	}
	if failed.Succeeded() || failed.Error != "no such tab" {
		t.Errorf("failed = %+v", failed)
	}
	if bare.Succeeded() {
		t.Error("message without ok reported success")
	}
}
