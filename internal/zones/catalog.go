package zones

import "backend-touristsafety/internal/shared/geo"

func ring(pts ...[2]float64) []geo.LatLng {
	out := make([]geo.LatLng, len(pts))
	for i, p := range pts {
		out[i] = geo.LatLng{Lat: p[0], Lng: p[1]}
	}
	return out
}

// EmergencyNumbers are the national helplines shown next to every zone.
var EmergencyNumbers = map[string]string{
	"police":             "100",
	"ambulance":          "102",
	"fire":               "101",
	"national_emergency": "112",
	"women_helpline":     "1091",
	"tourist_helpline":   "1363",
}

// Catalog returns a fresh copy of the built-in Delhi zones, attraction zones first.
func Catalog() []Zone {
	return append(attractionZones(), safetyZones()...)
}

func attractionZones() []Zone {
	return []Zone{
		{
			ID: "heritage-zone", Name: "Heritage Zone (Old Delhi)", Kind: KindAttraction, Category: CategoryHeritage,
			Description:  "Historical monuments and cultural sites in Old Delhi",
			SafetyRating: 4.2,
			Vertices:     ring([2]float64{28.6700, 77.2200}, [2]float64{28.6750, 77.2450}, [2]float64{28.6600, 77.2500}, [2]float64{28.6500, 77.2400}, [2]float64{28.6550, 77.2150}, [2]float64{28.6700, 77.2200}),
			Attractions: []Attraction{
				{Name: "Red Fort", Type: "UNESCO World Heritage", Rating: 4.6, Timings: "6:00 AM - 6:00 PM"},
				{Name: "Jama Masjid", Type: "Mosque", Rating: 4.4, Timings: "7:00 AM - 12:00 PM, 1:30 PM - 6:30 PM"},
				{Name: "Chandni Chowk", Type: "Market", Rating: 4.2, Timings: "10:00 AM - 8:00 PM"},
			},
			Facilities: []string{"Metro Station", "Parking", "Food Courts", "Tourist Police", "ATMs", "Restrooms"},
			Tips:       []string{"Visit early morning to avoid crowds", "Carry water and wear comfortable shoes"},
		},
		{
			ID: "central-delhi-zone", Name: "Central Delhi Zone", Kind: KindAttraction, Category: CategoryModern,
			Description:  "Government area and modern attractions",
			SafetyRating: 4.8,
			Vertices:     ring([2]float64{28.6000, 77.1900}, [2]float64{28.6300, 77.1950}, [2]float64{28.6350, 77.2300}, [2]float64{28.6200, 77.2350}, [2]float64{28.5950, 77.2100}, [2]float64{28.6000, 77.1900}),
			Attractions: []Attraction{
				{Name: "India Gate", Type: "War Memorial", Rating: 4.7, Timings: "24 hours"},
				{Name: "Rashtrapati Bhavan", Type: "Presidential Palace", Rating: 4.6, Timings: "By appointment"},
			},
			Facilities: []string{"Metro Stations", "Security", "Restaurants", "Government Buildings"},
			Tips:       []string{"Security checks at government buildings", "Great for evening walks around India Gate"},
		},
		{
			ID: "connaught-place-zone", Name: "Connaught Place Zone", Kind: KindAttraction, Category: CategoryModern,
			Description:  "Shopping and business district",
			SafetyRating: 4.7,
			Vertices:     ring([2]float64{28.6250, 77.2050}, [2]float64{28.6400, 77.2100}, [2]float64{28.6380, 77.2280}, [2]float64{28.6280, 77.2300}, [2]float64{28.6200, 77.2150}, [2]float64{28.6250, 77.2050}),
			Attractions: []Attraction{
				{Name: "Connaught Place", Type: "Shopping District", Rating: 4.5, Timings: "10:00 AM - 10:00 PM"},
				{Name: "Janpath Market", Type: "Market", Rating: 4.2, Timings: "10:00 AM - 8:00 PM"},
			},
			Facilities: []string{"Metro Station", "Shopping Malls", "Restaurants", "ATMs"},
			Tips:       []string{"Perfect for shopping and dining", "Central location with best connectivity"},
		},
		{
			ID: "south-delhi-zone", Name: "South Delhi Heritage Zone", Kind: KindAttraction, Category: CategoryHeritage,
			Description:  "Ancient monuments and gardens in South Delhi",
			SafetyRating: 4.4,
			Vertices:     ring([2]float64{28.5100, 77.1700}, [2]float64{28.5400, 77.1750}, [2]float64{28.5450, 77.2050}, [2]float64{28.5200, 77.2100}, [2]float64{28.5000, 77.1900}, [2]float64{28.5100, 77.1700}),
			Attractions: []Attraction{
				{Name: "Qutub Minar", Type: "UNESCO World Heritage", Rating: 4.5, Timings: "7:00 AM - 5:00 PM"},
				{Name: "Mehrauli Archaeological Park", Type: "Archaeological Site", Rating: 4.2, Timings: "6:00 AM - 6:00 PM"},
			},
			Facilities: []string{"Parking", "Cafeteria", "Souvenir Shop", "Guide Services"},
			Tips:       []string{"Perfect for history enthusiasts", "Carry sun protection during summers"},
		},
		{
			ID: "spiritual-zone", Name: "Spiritual Zone (South East)", Kind: KindAttraction, Category: CategorySpiritual,
			Description:  "Temples and spiritual centers",
			SafetyRating: 4.7,
			Vertices:     ring([2]float64{28.5400, 77.2400}, [2]float64{28.5650, 77.2450}, [2]float64{28.5700, 77.2700}, [2]float64{28.5500, 77.2750}, [2]float64{28.5350, 77.2550}, [2]float64{28.5400, 77.2400}),
			Attractions: []Attraction{
				{Name: "Lotus Temple", Type: "Bahai House of Worship", Rating: 4.6, Timings: "9:00 AM - 5:30 PM"},
				{Name: "ISKCON Temple", Type: "Hindu Temple", Rating: 4.5, Timings: "4:30 AM - 1:00 PM, 4:00 PM - 9:00 PM"},
			},
			Facilities: []string{"Meditation Halls", "Parking", "Shoe Storage", "Pure Vegetarian Food"},
			Tips:       []string{"Maintain silence in meditation areas", "Remove shoes before entering temples"},
		},
		{
			ID: "garden-zone", Name: "Garden & Nature Zone", Kind: KindAttraction, Category: CategoryNature,
			Description:  "Parks, gardens and natural spaces",
			SafetyRating: 4.6,
			Vertices:     ring([2]float64{28.5750, 77.2050}, [2]float64{28.6050, 77.2100}, [2]float64{28.6100, 77.2400}, [2]float64{28.5900, 77.2450}, [2]float64{28.5700, 77.2250}, [2]float64{28.5750, 77.2050}),
			Attractions: []Attraction{
				{Name: "Lodhi Gardens", Type: "Historical Garden", Rating: 4.5, Timings: "6:00 AM - 8:00 PM"},
				{Name: "Humayuns Tomb", Type: "UNESCO World Heritage", Rating: 4.4, Timings: "6:00 AM - 6:00 PM"},
			},
			Facilities: []string{"Walking Trails", "Exercise Equipment", "Childrens Play Area", "Cafeteria"},
			Tips:       []string{"Perfect for morning jogs and yoga", "Great for family picnics"},
		},
	}
}

func safetyZones() []Zone {
	return []Zone{
		{
			ID: "safe-zone-1", Name: "South Delhi Safe Zone", Kind: KindSafety, Category: CategorySafe,
			Description: "Well-patrolled upscale residential and commercial areas with excellent safety record",
			SafetyLevel: "Very Safe",
			Vertices:    ring([2]float64{28.5400, 77.2000}, [2]float64{28.5700, 77.2100}, [2]float64{28.5800, 77.2400}, [2]float64{28.5600, 77.2500}, [2]float64{28.5300, 77.2300}, [2]float64{28.5400, 77.2000}),
			Facilities:  []string{"CCTV surveillance network", "24/7 police patrolling", "Well-lit streets and parks", "Emergency call boxes"},
			Tips:        []string{"Ideal for solo travelers and families", "Safe for evening walks and outdoor activities"},
		},
		{
			ID: "moderate-zone-1", Name: "Central Delhi Moderate Zone", Kind: KindSafety, Category: CategoryModerate,
			Description: "Busy commercial area with moderate safety, requires normal precautions",
			SafetyLevel: "Moderately Safe",
			Vertices:    ring([2]float64{28.6100, 77.2000}, [2]float64{28.6400, 77.2050}, [2]float64{28.6450, 77.2350}, [2]float64{28.6200, 77.2400}, [2]float64{28.6050, 77.2200}, [2]float64{28.6100, 77.2000}),
			Facilities:  []string{"Regular police patrols", "CCTV in main areas", "Tourist police posts"},
			Tips:        []string{"Stay in well-lit main roads after dark", "Keep valuables secure", "Use official transportation"},
		},
		{
			ID: "crowdy-zone-1", Name: "Old Delhi Crowdy Zone", Kind: KindSafety, Category: CategoryCrowded,
			Description: "Extremely crowded market areas with heavy foot traffic and congestion",
			SafetyLevel: "Safe but Congested",
			Vertices:    ring([2]float64{28.6500, 77.2300}, [2]float64{28.6700, 77.2350}, [2]float64{28.6750, 77.2500}, [2]float64{28.6600, 77.2550}, [2]float64{28.6450, 77.2400}, [2]float64{28.6500, 77.2300}),
			Facilities:  []string{"Heavy police deployment", "Tourist police assistance", "Lost & found centers"},
			Tips:        []string{"Beware of pickpockets in crowds", "Keep important documents secure"},
		},
		{
			ID: "construction-zone-1", Name: "Metro Construction Zone", Kind: KindSafety, Category: CategoryConstruction,
			Description: "Active construction areas with ongoing metro and infrastructure development",
			SafetyLevel: "Caution Required",
			Vertices:    ring([2]float64{28.5800, 77.1800}, [2]float64{28.6000, 77.1850}, [2]float64{28.6050, 77.2000}, [2]float64{28.5900, 77.2050}, [2]float64{28.5750, 77.1950}, [2]float64{28.5800, 77.1800}),
			Facilities:  []string{"Construction safety barriers", "Warning signage in multiple languages"},
			Tips:        []string{"Follow designated pathways", "Avoid construction areas during rain"},
		},
		{
			ID: "risky-zone-1", Name: "High Alert Zone", Kind: KindSafety, Category: CategoryHighAlert,
			Description: "Areas requiring extra caution due to higher crime rates or safety concerns",
			SafetyLevel: "Exercise Extreme Caution",
			Vertices:    ring([2]float64{28.6800, 77.2100}, [2]float64{28.7000, 77.2150}, [2]float64{28.7050, 77.2350}, [2]float64{28.6900, 77.2400}, [2]float64{28.6750, 77.2250}, [2]float64{28.6800, 77.2100}),
			Facilities:  []string{"Increased police patrols", "Emergency panic buttons", "Escort services available"},
			Tips:        []string{"Travel only during daylight", "Never travel alone", "Inform someone about your location"},
		},
		{
			ID: "safe-zone-2", Name: "Diplomatic Enclave Safe Zone", Kind: KindSafety, Category: CategorySafe,
			Description: "Diplomatic area with maximum security and safety protocols",
			SafetyLevel: "Maximum Security",
			Vertices:    ring([2]float64{28.5950, 77.1900}, [2]float64{28.6100, 77.1950}, [2]float64{28.6150, 77.2100}, [2]float64{28.6000, 77.2150}, [2]float64{28.5900, 77.2000}, [2]float64{28.5950, 77.1900}),
			Facilities:  []string{"Multi-tier security system", "24/7 armed security", "Advanced CCTV network"},
			Tips:        []string{"Carry valid identification", "Follow security protocols strictly"},
		},
	}
}
