package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestClassify(t *testing.T) {
	const bindings = "scripts/ALPACA.lua"

	tests := []struct {
		path string
		want domain.SourceKind
	}{
		{path: "characters/joy/joy.spine", want: domain.AnimationSource},
		{path: "joy.SPINE", want: domain.AnimationSource},
		{path: "audio/de_001.ogg", want: domain.AudioSource},
		{path: "scripts/door.lua", want: domain.ScriptSource},
		{path: "scripts/ALPACA.lua", want: domain.BindingsOutput},
		{path: "scenes/intro.json", want: domain.SceneSource},
		{path: "scenes/act1/intro.json", want: domain.SceneSource},
		{path: "config/game.json", want: domain.ConfigSource},
		{path: "dialog/intro.schnack", want: domain.DialogueSource},
		{path: "misc/intro.schnack", want: domain.Unrecognized},
		{path: "misc/data.json", want: domain.Unrecognized},
		{path: "fonts/main.ttf", want: domain.Unrecognized},
		{path: "icons/icon.png", want: domain.Unrecognized},
		{path: "scenes.json", want: domain.Unrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Classify(tt.path, bindings))
		})
	}
}

func TestSourceKind_String(t *testing.T) {
	assert.Equal(t, "scene", domain.SceneSource.String())
	assert.Equal(t, "bindings", domain.BindingsOutput.String())
	assert.Equal(t, "unrecognized", domain.SourceKind(200).String())
}

func TestIsTracked(t *testing.T) {
	assert.True(t, domain.IsTracked("a/b.spine"))
	assert.True(t, domain.IsTracked("a/b.schnack"))
	assert.False(t, domain.IsTracked("a/b.png"))
	assert.False(t, domain.IsTracked("a/b"))
}

func TestClassifyHook(t *testing.T) {
	tests := []struct {
		name       string
		wantKind   domain.HookKind
		wantTarget string
	}{
		{name: "walkable_area", wantKind: domain.HookReserved, wantTarget: "walkable_area"},
		{name: "non_walkable_area", wantKind: domain.HookReserved, wantTarget: "non_walkable_area"},
		{name: "dlg:farewell", wantKind: domain.HookDialogue, wantTarget: "farewell"},
		{name: "anim:wave", wantKind: domain.HookAnimation, wantTarget: "wave"},
		{name: "door", wantKind: domain.HookScript, wantTarget: "door"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, target := domain.ClassifyHook(tt.name)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}
