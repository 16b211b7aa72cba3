package chat

import "testing"

func TestPresenceRegisterUnregister(t *testing.T) {
	r := NewPresenceRegistry()

	// 同一用户两端登录
	r.Register(PresenceEntry{ConnId: "c1", UserId: "UA", UserName: "张三"})
	r.Register(PresenceEntry{ConnId: "c2", UserId: "UA", UserName: "张三"})

	if !r.IsOnline("UA") {
		t.Fatal("UA should be online")
	}
	if got := len(r.ConnectionsOf("UA")); got != 2 {
		t.Fatalf("expected 2 connections, got %d", got)
	}

	// 断开一端：仍在线
	entry, stillOnline, found := r.Unregister("c1")
	if !found || entry.UserId != "UA" {
		t.Fatalf("unexpected unregister result: %+v found=%v", entry, found)
	}
	if !stillOnline {
		t.Error("UA should still be online via c2")
	}

	// 断开最后一端：离线
	_, stillOnline, _ = r.Unregister("c2")
	if stillOnline {
		t.Error("UA should be offline after last connection closes")
	}
	if r.IsOnline("UA") {
		t.Error("IsOnline must be false after all connections closed")
	}

	// 重复注销是空操作
	if _, _, found := r.Unregister("c2"); found {
		t.Error("duplicate unregister must report not found")
	}
}

func TestPresenceListOnline(t *testing.T) {
	r := NewPresenceRegistry()
	r.Register(PresenceEntry{ConnId: "c1", UserId: "UA", UserName: "张三"})
	r.Register(PresenceEntry{ConnId: "c2", UserId: "UB", UserName: "李四"})

	list := r.ListOnline()
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	seen := map[string]bool{}
	for _, e := range list {
		seen[e.ConnectionId] = true
	}
	if !seen["c1"] || !seen["c2"] {
		t.Errorf("missing connection entries: %+v", list)
	}
}
