package catalog

// Default returns the compiled-in catalogue. The department set mirrors the
// municipal department registry; SLA days come from the per-department
// resolution targets.
func Default() *Catalog {
	c := &Catalog{
		Departments: []Department{
			{ID: "D01", Name: "Roads & Bridges", SLADays: 3, Keywords: []string{"pothole", "road", "bridge", "footpath", "pavement", "crack", "speed breaker"}},
			{ID: "D02", Name: "Buildings & Planning", SLADays: 14, Keywords: []string{"construction", "illegal", "encroachment", "building", "permit"}},
			{ID: "D03", Name: "Water Supply", SLADays: 5, Keywords: []string{"water", "supply", "pipe", "leak", "low pressure", "no water", "dirty water"}},
			{ID: "D04", Name: "Sewage & Drainage", SLADays: 3, Keywords: []string{"sewage", "drain", "blocked", "overflow", "manhole", "stench"}},
			{ID: "D05", Name: "Solid Waste Management", SLADays: 2, Keywords: []string{"garbage", "waste", "bin", "collection", "dumping", "litter", "trash"}},
			{ID: "D06", Name: "Street Lighting", SLADays: 7, Keywords: []string{"light", "lamp", "dark", "street light", "electricity", "bulb"}},
			{ID: "D07", Name: "Parks & Greenery", SLADays: 30, Keywords: []string{"park", "tree", "garden", "grass", "playground", "fallen tree"}},
			{ID: "D08", Name: "Health & Sanitation", SLADays: 5, Keywords: []string{"mosquito", "dengue", "fever", "epidemic", "stray", "dog", "bite", "dead animal"}},
			{ID: "D09", Name: "Fire & Emergency", SLADays: 1, Keywords: []string{"fire", "accident", "emergency", "explosion", "hazard", "collapse"}},
			{ID: "D10", Name: "Traffic & Transport", SLADays: 1, Keywords: []string{"traffic", "signal", "bus", "road block", "parking", "vehicle"}},
			{ID: "D11", Name: "Revenue & Property", SLADays: 21, Keywords: []string{"tax", "property", "document", "certificate"}},
			{ID: "D12", Name: "Social Welfare", SLADays: 7, Keywords: []string{"pension", "welfare", "disability", "ration", "subsidy"}},
			{ID: "D13", Name: "Education", SLADays: 14, Keywords: []string{"school", "teacher", "education", "college", "student"}},
			{ID: "D14", Name: "Disaster Management", SLADays: 1, Keywords: []string{"flood", "cyclone", "landslide", "tsunami", "disaster", "relief"}},
		},
		SafetyKeywords: []string{
			"accident", "danger", "hazard", "fire", "electric shock",
			"child fell", "injury", "death", "hospital", "emergency",
			"flood", "collapse", "snake", "rabies", "epidemic",
			"விபத்து", "ஆபத்து", "आग", "खतरा", "ప్రమాదం",
		},
		SeverityMap: map[string]int{
			"street_light_out": 15, "multiple_lights_out": 22,
			"electrical_spark_hazard": 30, "electrical_hazard": 30,
			"small_pothole": 12, "large_pothole": 28, "pothole": 25,
			"road_collapse": 28, "bridge_crack": 30,
			"low_pressure": 14, "no_water_supply": 22, "water": 16,
			"dirty_water": 25, "burst_pipe_flooding": 30,
			"drain_blocked": 18, "sewage_overflow": 26, "open_manhole": 30, "sewage": 20,
			"missed_collection_once": 10, "overflowing_bin": 16, "garbage": 14,
			"dead_animal_carcass": 22, "illegal_dumping_large": 20,
			"mosquito_breeding": 18, "stray_dog_bite": 28, "stray": 18,
			"disease_outbreak_concern": 30, "flood": 28, "flooding": 28,
			"fire": 30, "accident": 28, "collapse": 28,
		},
		LocationScores: map[string]int{
			"main_road": 10, "hospital_vicinity": 10, "school_vicinity": 9,
			"market": 8, "residential": 5, "internal_street": 3, "unknown": 4,
		},
		RecurringCategories: []string{
			"flood", "pothole", "sewage_overflow", "dirty_water",
			"mosquito_breeding", "garbage", "drain_blocked", "road_collapse",
		},
	}
	c.index()
	return c
}
