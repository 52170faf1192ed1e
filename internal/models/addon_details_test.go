package models

import (
	"testing"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/types"
)

func TestAddonDetailsResolvesInstalledAddonImmediately(t *testing.T) {
	installed := types.Descriptor{TransportURL: "https://installed.test/manifest.json", Manifest: types.Manifest{ID: "x"}}
	addons := []types.Descriptor{installed}
	env := fakeTransportEnv{}
	d := NewAddonDetails()
	eff := d.Update(env, addons, msg.ActionLoadAddonDetails{TransportURL: installed.TransportURL})
	if len(eff.Items) != 0 {
		t.Fatalf("expected no transport call for an already-installed add-on")
	}
	if !d.Descriptor.IsReady() || d.Descriptor.Value.Manifest.ID != "x" {
		t.Fatalf("expected immediate Ready resolution, got %+v", d.Descriptor)
	}
}

func TestAddonDetailsFetchesManifestForUnknownURL(t *testing.T) {
	env := fakeTransportEnv{}
	d := NewAddonDetails()
	eff := d.Update(env, nil, msg.ActionLoadAddonDetails{TransportURL: "https://unknown.test/manifest.json"})
	if len(eff.Items) != 1 {
		t.Fatalf("expected one scheduled manifest future, got %d", len(eff.Items))
	}
	if !d.Descriptor.IsLoading() {
		t.Fatalf("expected Loading while the manifest fetch is in flight")
	}

	if _, ok := eff.Items[0].AsFuture(); !ok {
		t.Fatalf("expected a future effect")
	}
	manifest := types.Manifest{ID: "resolved"}
	result := msg.InternalManifestRequestResult{TransportURL: "https://unknown.test/manifest.json", Manifest: &manifest}
	d.Update(env, nil, result)
	if !d.Descriptor.IsReady() || d.Descriptor.Value.Manifest.ID != "resolved" {
		t.Fatalf("expected Ready with the resolved manifest, got %+v", d.Descriptor)
	}
}

func TestAddonDetailsDedupsInFlightRequest(t *testing.T) {
	env := fakeTransportEnv{}
	d := NewAddonDetails()
	url := "https://unknown.test/manifest.json"
	eff1 := d.Update(env, nil, msg.ActionLoadAddonDetails{TransportURL: url})
	if len(eff1.Items) != 1 {
		t.Fatalf("expected the first request to schedule a future")
	}
	eff2 := d.Update(env, nil, msg.ActionLoadAddonDetails{TransportURL: url})
	if eff2.Changed {
		t.Fatalf("expected a second in-flight request for the same URL to be a no-op")
	}
}

func TestAddonDetailsDiscardsStaleManifestResult(t *testing.T) {
	env := fakeTransportEnv{}
	d := NewAddonDetails()
	d.Update(env, nil, msg.ActionLoadAddonDetails{TransportURL: "https://a.test/manifest.json"})
	// A different, already-superseded load replaces tracking.
	d.Update(env, nil, msg.ActionLoadAddonDetails{TransportURL: "https://b.test/manifest.json"})

	stale := msg.InternalManifestRequestResult{TransportURL: "https://a.test/manifest.json", Manifest: &types.Manifest{ID: "stale"}}
	eff := d.Update(env, nil, stale)
	if eff.Changed {
		t.Fatalf("expected stale manifest result to be discarded")
	}
}
