package content

// Category is a named list of post templates.
type Category struct {
	Name          string
	Controversial bool
	Templates     []string
}

func nationalCategories() []Category {
	return []Category{
		{
			Name: "economy",
			Templates: []string{
				"Grocery prices are still way higher than last year and wages are not keeping up.",
				"Every candidate talks about the middle class but nobody explains how they will pay for it.",
				"The latest jobs report looks good on paper, but folks around here are working two jobs.",
				"Interest rates are making it impossible for young families to buy a first home.",
			},
		},
		{
			Name: "healthcare",
			Templates: []string{
				"Nobody should go bankrupt because they got sick. Healthcare costs are out of control.",
				"Prescription drug prices need a real fix, not another press conference.",
				"Rural hospitals keep closing and Washington barely notices.",
				"My insurance premium went up again this year with fewer doctors in network.",
			},
		},
		{
			Name: "education",
			Templates: []string{
				"Teachers are buying their own classroom supplies. That should embarrass all of us.",
				"College should not require a lifetime of debt to get a decent job.",
				"Trade schools deserve the same respect and funding as four-year universities.",
			},
		},
		{
			Name: "infrastructure",
			Templates: []string{
				"The bridge on our commute has been rated structurally deficient for a decade.",
				"Broadband is basic infrastructure now. Too many towns are still left offline.",
				"We keep funding new highways while existing roads crumble.",
			},
		},
		{
			Name: "elections",
			Templates: []string{
				"Check your voter registration this week. Deadlines sneak up on people.",
				"Midterm turnout decides more than people think. Local races matter.",
				"Campaign ads this cycle are all attack and no plan.",
			},
		},
		{
			Name:          "immigration",
			Controversial: true,
			Templates: []string{
				"Congress has dodged immigration reform for twenty years and everyone pays for it.",
				"Border policy keeps swinging every four years and nobody can plan around it.",
				"Farms and hospitals depend on immigrant labor and the debate ignores that.",
			},
		},
		{
			Name:          "climate",
			Controversial: true,
			Templates: []string{
				"Wildfire smoke days are the new normal and we are still arguing about whether it is real.",
				"Energy policy should lower bills first. Slogans do not heat a house.",
				"Flood insurance rates just doubled on our street. Climate is a pocketbook issue now.",
			},
		},
		{
			Name:          "gun_policy",
			Controversial: true,
			Templates: []string{
				"Responsible gun owners and safety advocates agree on more than the talking heads admit.",
				"Another shooting, another round of thoughts and prayers, another year of nothing.",
				"Background check rules should be enforced before anyone writes new ones.",
			},
		},
		{
			Name:          "taxes",
			Controversial: true,
			Templates: []string{
				"Tax season reminder that the code is written for people who can afford accountants.",
				"Every tax cut is sold as help for working families. Check who actually benefits.",
				"Property taxes are pushing retirees out of homes they paid off decades ago.",
			},
		},
	}
}

func localCategories() []Category {
	return []Category{
		{
			Name: "local_government",
			Templates: []string{
				"City council meets Tuesday night and the budget is on the agenda. Show up.",
				"Our county commissioner finally answered emails about the zoning change.",
				"The school board vote was decided by about forty people. Local elections matter.",
			},
		},
		{
			Name: "community_events",
			Templates: []string{
				"Farmers market opens this Saturday. Support the growers who feed this town.",
				"Volunteers needed for the neighborhood cleanup this weekend.",
				"The library summer reading kickoff was packed. Love seeing that.",
			},
		},
		{
			Name: "public_safety",
			Templates: []string{
				"Anyone else notice the new crosswalk signals downtown? Long overdue.",
				"Response times for the fire department have improved since the new station opened.",
				"Street lights on the east side have been out for weeks.",
			},
		},
		{
			Name: "transit",
			Templates: []string{
				"The bus route change cut my commute by twenty minutes. Credit where it is due.",
				"Potholes on Main Street are swallowing hubcaps again.",
				"A bike lane that ends in the middle of traffic is not a bike lane.",
			},
		},
		{
			Name: "parks",
			Templates: []string{
				"The renovated playground at the park looks fantastic. Great use of the bond money.",
				"Trail maintenance volunteers deserve a thank you. The river path has never looked better.",
				"Please keep dogs leashed at the nature preserve. The nesting birds thank you.",
			},
		},
	}
}

// personaClauses is appended to every post written in that persona's voice.
var personaClauses = map[string]string{
	"progressive_urban":    "We can do better for everyone.",
	"conservative_rural":   "Common sense has to come back.",
	"moderate_suburban":    "There has to be a reasonable middle ground here.",
	"libertarian":          "Maybe the government should just get out of the way.",
	"young_activist":       "Our generation is paying attention.",
	"retiree":              "I have seen this before and it matters.",
	"small_business_owner": "Main Street feels this first.",
	"local_advocate":       "Neighbors, let's get involved.",
}

var variantSuffixes = []string{
	"Thoughts?",
	"Just saying.",
	"Curious what others think.",
	"Anyone else seeing this?",
	"Worth talking about.",
}

var variantPrefixes = []string{
	"Honestly,",
	"Real talk:",
	"Not going to lie,",
	"Quick thought:",
}

var responseTemplates = []string{
	"Interesting take on {topic}. I think {reason}.",
	"I see your point about {topic}, but {reason}.",
	"Agreed on {topic}. Also worth knowing: {fact}.",
	"Not sure about {topic}. {fact}, so {reason}.",
	"This is why {topic} matters. {fact}.",
}

var responseReasons = []string{
	"the details matter more than the headlines",
	"local impact is what people actually feel",
	"both sides are missing the practical costs",
	"we need to hear from the people affected",
	"long-term planning beats quick fixes",
	"the numbers tell a more complicated story",
}

var responseFacts = []string{
	"turnout in local elections is often under 20 percent",
	"most city budgets are decided months before the vote",
	"state legislatures pass far more bills than Congress",
	"public comment periods are open to anyone",
	"county records are usually available online",
}
