package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ordersync/internal/models"
)

func TestDetectConsole(t *testing.T) {
	tests := []struct {
		title string
		want  models.Console
	}{
		{"[XBOX XS] 100M CASH", models.ConsoleXboxXS},
		{"XBOX SERIES X RANK 100", models.ConsoleXboxXS},
		{"[XBOX ONE] MODDED OUTFITS", models.ConsoleXboxOne},
		{"[PS5] GTA 5 PACKAGE", models.ConsolePS5},
		{"PLAYSTATION 5 LEVEL 120", models.ConsolePS5},
		{"PS4 BUNKER UNLOCK", models.ConsolePS4},
		{"PLAYSTATION 4 CASH", models.ConsolePS4},
		{"PC CASH", models.ConsoleUnknown},
	}

	for _, tt := range tests {
		if got := DetectConsole(tt.title); got != tt.want {
			t.Errorf("DetectConsole(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestExtractServices_SingleRule(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  models.Service
	}{
		{
			name:  "gta package without console",
			title: "GTA 5 PACKAGE",
			want:  models.Service{Service: "GTA 5 PACKAGE", Console: models.ConsoleUnknown, Category: models.CategoryGTAPackage},
		},
		{
			name:  "gta package compact spelling",
			title: "[XBOX ONE] GTA5 Package",
			want:  models.Service{Service: "GTA 5 PACKAGE", Console: models.ConsoleXboxOne, Category: models.CategoryGTAPackage},
		},
		{
			name:  "cash and cars",
			title: "[PS5] 100M Cash + Cars",
			want:  models.Service{Service: "CASH + CARS", Console: models.ConsolePS5, Quantity: "100M", Category: models.CategoryCashAndCars},
		},
		{
			name:  "cash with K suffix",
			title: "[PS4] 500K Cash",
			want:  models.Service{Service: "ONLY CASH", Console: models.ConsolePS4, Quantity: "500K", Category: models.CategoryOnlyCash},
		},
		{
			name:  "bare cash number gets M",
			title: "PS5 50 Cash",
			want:  models.Service{Service: "ONLY CASH", Console: models.ConsolePS5, Quantity: "50M", Category: models.CategoryOnlyCash},
		},
		{
			name:  "trio of outfits",
			title: "TRIO OF CUSTOM OUTFITS",
			want:  models.Service{Service: "TRIO OF CUSTOM OUTFITS", Console: models.ConsoleUnknown, Category: "TRIO OF CUSTOM OUTFITS"},
		},
		{
			name:  "modded outfits with console prefix",
			title: "[PS5] Modded Outfits",
			want:  models.Service{Service: "MODDED OUTFITS", Console: models.ConsolePS5, Category: "MODDED OUTFITS"},
		},
		{
			name:  "modded cars",
			title: "Modded Cars PS4",
			want:  models.Service{Service: "MODDED CARS", Console: models.ConsolePS4, Category: "MODDED CARS"},
		},
		{
			name:  "rank range before keyword",
			title: "0-120 Rank Boost PS4",
			want:  models.Service{Service: "Rank 0-120", Console: models.ConsolePS4, Quantity: "0-120", Category: models.CategoryRank},
		},
		{
			name:  "rank range with en dash after keyword",
			title: "[PS5] Rank 1–100",
			want:  models.Service{Service: "Rank 1-100", Console: models.ConsolePS5, Quantity: "1-100", Category: models.CategoryRank},
		},
		{
			name:  "rank single after keyword",
			title: "Rank 50 [XBOX SERIES]",
			want:  models.Service{Service: "Rank 50", Console: models.ConsoleXboxXS, Quantity: "50", Category: models.CategoryRank},
		},
		{
			name:  "console digit is not a rank",
			title: "PS5 Rank Boost 100",
			want:  models.Service{Service: "Rank 100", Console: models.ConsolePS5, Quantity: "100", Category: models.CategoryRank},
		},
		{
			name:  "level single",
			title: "Level 100 PS5",
			want:  models.Service{Service: "LVL 100", Console: models.ConsolePS5, Quantity: "100", Category: models.CategoryLevel},
		},
		{
			name:  "level range",
			title: "[PS4] 50-100 LVL",
			want:  models.Service{Service: "LVL 50-100", Console: models.ConsolePS4, Quantity: "50-100", Category: models.CategoryLevel},
		},
		{
			name:  "bunker",
			title: "Full Bunker Unlock PS5",
			want:  models.Service{Service: "FULL BUNKER UNLOCK", Console: models.ConsolePS5, Category: models.CategoryBunker},
		},
		{
			name:  "rank without quantity falls back",
			title: "Rank Boost Service",
			want:  models.Service{Service: "Rank Boost Service", Console: models.ConsoleUnknown, Category: models.CategoryUnknown},
		},
		{
			name:  "nothing matches",
			title: "Casino Heist Help",
			want:  models.Service{Service: "Casino Heist Help", Console: models.ConsoleUnknown, Category: models.CategoryUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractServices(tt.title)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestExtractServices_GTAPackageAnyConsole(t *testing.T) {
	for _, prefix := range []string{"", "[PS4] ", "[PS5] ", "[XBOX ONE] ", "[XBOX XS] ", "XBOX SERIES "} {
		got := ExtractServices(prefix + "GTA 5 PACKAGE")
		require.Len(t, got, 1, prefix)
		assert.Equal(t, models.CategoryGTAPackage, got[0].Category)
		assert.Empty(t, got[0].Quantity)
	}
}

func TestExtractServices_CashAndCarsSkipsCarsRule(t *testing.T) {
	for _, title := range []string{"100M CASH + CARS", "[PS5] 100M Cash + Cars", "Cars and 100M cash"} {
		got := ExtractServices(title)
		require.Len(t, got, 1, title)
		assert.Equal(t, models.CategoryCashAndCars, got[0].Category)
		assert.Equal(t, "100M", got[0].Quantity)
	}
}

func TestExtractServices_MultipleRulesKeepPriorityOrder(t *testing.T) {
	got := ExtractServices("[PS5] 100M Cash + Rank 120 + Full Bunker Unlock")

	require.Len(t, got, 3)
	assert.Equal(t, models.CategoryBunker, got[0].Category)
	assert.Equal(t, models.CategoryRank, got[1].Category)
	assert.Equal(t, "120", got[1].Quantity)
	assert.Equal(t, models.CategoryOnlyCash, got[2].Category)
	assert.Equal(t, "100M", got[2].Quantity)
	for _, s := range got {
		assert.Equal(t, models.ConsolePS5, s.Console)
	}
}

func TestRenderTitle(t *testing.T) {
	tests := []struct {
		service models.Service
		want    string
	}{
		{models.Service{Service: "CASH + CARS", Console: models.ConsolePS5, Quantity: "100M", Category: models.CategoryCashAndCars}, "[PS5] 100M CASH + CARS"},
		{models.Service{Service: "Rank 0-120", Console: models.ConsolePS4, Quantity: "0-120", Category: models.CategoryRank}, "[PS4] 0-120 Rank"},
		{models.Service{Service: "LVL 100", Console: models.ConsoleXboxXS, Quantity: "100", Category: models.CategoryLevel}, "[XBOX XS] 100 LVL"},
		{models.Service{Service: "FULL BUNKER UNLOCK", Console: models.ConsolePS5, Category: models.CategoryBunker}, "[PS5] FULL BUNKER UNLOCK"},
		{models.Service{Service: "GTA 5 PACKAGE", Console: models.ConsoleXboxOne, Category: models.CategoryGTAPackage}, "[XBOX ONE] GTA 5 PACKAGE"},
		{models.Service{Service: "MODDED OUTFITS", Console: models.ConsolePS5, Category: "MODDED OUTFITS"}, "[PS5] MODDED OUTFITS"},
		{models.Service{Service: "Rank 50", Console: models.ConsoleUnknown, Quantity: "50", Category: models.CategoryRank}, "Rank 50"},
	}

	for _, tt := range tests {
		if got := RenderTitle(tt.service); got != tt.want {
			t.Errorf("RenderTitle(%+v) = %q, want %q", tt.service, got, tt.want)
		}
	}
}

func TestRenderTitle_UnknownConsoleUsesRawTitle(t *testing.T) {
	services := ExtractServices("TRIO OF CUSTOM OUTFITS")

	require.Len(t, services, 1)
	assert.Equal(t, "TRIO OF CUSTOM OUTFITS", RenderTitle(services[0]))
}
