package catalog

import (
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
)

// Seed IDs are fixed so that the offline snapshot and a freshly seeded
// database agree on product identity.
var (
	seedPearlEnsembleID  = uuid.MustParse("6d1f2a9c-8b3e-4f71-9c52-1a0d4e8b2f10")
	seedButterflyWatchID = uuid.MustParse("b2c8e4d1-7a95-4c36-8e1f-5d9a3b7c4e21")
	seedAmethystSetID    = uuid.MustParse("f4a6b8d2-1c3e-4957-b6a8-2e0f9d5c7a32")
	seedHaloRingID       = uuid.MustParse("a9e3c5f7-2d4b-4168-95c7-3f1e8a6b0d43")
	seedSportChronoID    = uuid.MustParse("c7d9f1a3-5e6b-4279-a8d9-4a2f7c8e1b54")
	seedPearlChokerID    = uuid.MustParse("e1f3a5c7-9b8d-4380-b1ea-5b3a6d9f2c65")
	seedRoseGiftBoxID    = uuid.MustParse("90a2c4e6-3f5d-4491-c2fb-6c4b7e0a3d76")
	seedLeatherWatchID   = uuid.MustParse("82b4d6f8-4a6e-45a2-d3ac-7d5c8f1b4e87")

	seedWatchGoldStrapID    = uuid.MustParse("1a3b5c7d-9e8f-4a1b-8c2d-3e4f5a6b7c8d")
	seedWatchLeatherStrapID = uuid.MustParse("2b4c6d8e-0f1a-4b2c-9d3e-4f5a6b7c8d9e")

	seedRingSize6PlatinumID = uuid.MustParse("3c5d7e9f-1a2b-4c3d-8e4f-5a6b7c8d9e0f")
	seedRingSize7PlatinumID = uuid.MustParse("4d6e8f0a-2b3c-4d4e-9f5a-6b7c8d9e0f1a")
	seedRingSize8PlatinumID = uuid.MustParse("5e7f9a1b-3c4d-4e5f-8a6b-7c8d9e0f1a2b")
	seedRingSize6RoseID     = uuid.MustParse("6f8a0b2c-4d5e-4f6a-9b7c-8d9e0f1a2b3c")
	seedRingSize7RoseID     = uuid.MustParse("7a9b1c3d-5e6f-4a7b-8c8d-9e0f1a2b3c4d")
)

// SeedProducts returns the launch catalog. It doubles as the offline
// snapshot served when the database is unreachable.
func SeedProducts() []models.Product {
	return []models.Product{
		{
			ID:          seedPearlEnsembleID,
			Name:        "Royal Pearl & Crystal Ensemble",
			PriceCents:  1500000,
			Description: "A luxurious multi-strand pearl necklace and bracelet set accented with gold and crystal spacers. Perfect for grand occasions.",
			Category:    enums.ProductCategorySets,
			Image:       "https://images.unsplash.com/photo-1620656199806-a24443912190?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"pearl", "crystal", "gold"},
			Stock:       5,
		},
		{
			ID:          seedButterflyWatchID,
			Name:        "Butterfly Essence Gold Watch",
			PriceCents:  6500000,
			Description: "A statement timepiece in 18k gold featuring a unique butterfly motif on the dial. A blend of precision and poetry.",
			Category:    enums.ProductCategoryWatches,
			Image:       "https://images.unsplash.com/photo-1622434641406-a158123450f9?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"gold", "statement"},
			Stock:       3,
			Variants: []models.ProductVariant{
				{
					ID:         seedWatchGoldStrapID,
					ProductID:  seedButterflyWatchID,
					Name:       "Gold Strap",
					PriceCents: 6500000,
					Stock:      2,
					Options:    map[string]string{"Strap": "Gold"},
				},
				{
					ID:         seedWatchLeatherStrapID,
					ProductID:  seedButterflyWatchID,
					Name:       "Leather Strap",
					PriceCents: 6200000,
					Stock:      1,
					Options:    map[string]string{"Strap": "Leather"},
				},
			},
		},
		{
			ID:          seedAmethystSetID,
			Name:        "Pink Amethyst Teardrop Set",
			PriceCents:  950000,
			Description: "Vibrant pink amethyst teardrops suspended from a gold vine necklace with matching drop earrings.",
			Category:    enums.ProductCategorySets,
			Image:       "https://images.unsplash.com/photo-1599643477877-530eb83abc8e?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"amethyst", "gold"},
			Stock:       8,
		},
		{
			ID:          seedHaloRingID,
			Name:        "Halo Diamond Engagement Ring",
			PriceCents:  4500000,
			Description: "A breathtaking brilliant-cut diamond surrounded by a double halo of pave stones. Set in platinum.",
			Category:    enums.ProductCategoryRings,
			Image:       "https://images.unsplash.com/photo-1605100804763-247f67b3557e?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"diamond", "platinum", "engagement"},
			Stock:       12,
			Variants: []models.ProductVariant{
				{
					ID:         seedRingSize6PlatinumID,
					ProductID:  seedHaloRingID,
					Name:       "Size 6 - Platinum",
					PriceCents: 4500000,
					Stock:      3,
					Options:    map[string]string{"Size": "6", "Material": "Platinum"},
				},
				{
					ID:         seedRingSize7PlatinumID,
					ProductID:  seedHaloRingID,
					Name:       "Size 7 - Platinum",
					PriceCents: 4500000,
					Stock:      4,
					Options:    map[string]string{"Size": "7", "Material": "Platinum"},
				},
				{
					ID:         seedRingSize8PlatinumID,
					ProductID:  seedHaloRingID,
					Name:       "Size 8 - Platinum",
					PriceCents: 4500000,
					Stock:      0,
					Options:    map[string]string{"Size": "8", "Material": "Platinum"},
				},
				{
					ID:         seedRingSize6RoseID,
					ProductID:  seedHaloRingID,
					Name:       "Size 6 - Rose Gold",
					PriceCents: 4200000,
					Stock:      2,
					Options:    map[string]string{"Size": "6", "Material": "Rose Gold"},
				},
				{
					ID:         seedRingSize7RoseID,
					ProductID:  seedHaloRingID,
					Name:       "Size 7 - Rose Gold",
					PriceCents: 4200000,
					Stock:      3,
					Options:    map[string]string{"Size": "7", "Material": "Rose Gold"},
				},
			},
		},
		{
			ID:          seedSportChronoID,
			Name:        "Sport Elite Chronograph",
			PriceCents:  350000,
			Description: "Rugged durability meets modern aesthetics. A black digital-analog hybrid watch for the active lifestyle.",
			Category:    enums.ProductCategoryWatches,
			Image:       "https://images.unsplash.com/photo-1524592094714-0f0654e20314?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"sport", "chronograph"},
			Stock:       20,
		},
		{
			ID:          seedPearlChokerID,
			Name:        "Pearl & Gold Wire Choker",
			PriceCents:  550000,
			Description: "Contemporary minimalist design featuring large south sea pearls on a structured gold wire collar.",
			Category:    enums.ProductCategoryNecklaces,
			Image:       "https://images.unsplash.com/photo-1515562141207-7a88fb7ce338?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"pearl", "minimalist"},
			Stock:       15,
		},
		{
			ID:          seedRoseGiftBoxID,
			Name:        "Eternal Rose Gift Box",
			PriceCents:  250000,
			Description: "The ultimate romantic gesture. A delicate jewelry set presented in a box of everlasting red roses.",
			Category:    enums.ProductCategorySets,
			Image:       "https://images.unsplash.com/photo-1549465220-1a8b9238cd48?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"gift", "roses"},
			Stock:       50,
		},
		{
			ID:          seedLeatherWatchID,
			Name:        "Executive Leather Watch",
			PriceCents:  180000,
			Description: "Classic sophistication with a black leather strap and Roman numeral dial. Timeless elegance.",
			Category:    enums.ProductCategoryWatches,
			Image:       "https://images.unsplash.com/photo-1522312346375-d1a52e2b99b3?q=80&w=800&auto=format&fit=crop",
			Tags:        pq.StringArray{"leather", "classic"},
			Stock:       10,
		},
	}
}
