package guides

var roleBlocks = map[string]Block{
	"student": {
		Heading: "For students (study permit)",
		Items: []Item{
			{"Study permit", "keep your permit and passport together. You must stay enrolled at your designated learning institution (DLI)."},
			{"GIC / proof of funds", "if you used a GIC for your visa, your bank will release an initial amount when you visit a branch. Bring your passport, study permit, and GIC confirmation letter."},
			{"Open a bank account", "bring passport, study permit, proof of address (rental agreement / college letter). Ask for a student account with no or low monthly fees."},
			{"SIN (Social Insurance Number)", "apply at Service Canada. You need passport, study permit, and Canadian address. Required for off-campus work."},
		},
	},
	"worker": {
		Heading: "For workers (work permit)",
		Items: []Item{
			{"Work permit", "check if it is employer-specific or open. Make sure your job matches the conditions written on the permit."},
			{"SIN", "apply as soon as you land so your employer can pay you legally and deduct taxes."},
			{"Bank account + payroll", "open a chequing account and give your employer a void cheque or direct deposit form."},
		},
	},
	"visitor": {
		Heading: "For visitors (visitor record / TRV)",
		Items: []Item{
			{"Visitor status", "check the stamp or document for your allowed length of stay. You generally cannot work."},
			{"Travel insurance", "keep proof handy in case of medical emergencies."},
		},
	},
}

var roleOrder = []string{"student", "worker", "visitor"}

var provinceBlocks = map[string]Block{
	"Ontario": {
		Heading: "Ontario (Toronto & Brampton)",
		Items: []Item{
			{"Ontario Health Card (OHIP)", "many international students use college/private insurance instead of OHIP. Workers and PRs can apply at ServiceOntario when eligible."},
			{"Ontario Photo Card", "if you don't drive, you can get a government ID card (useful for banks, SIM cards, etc.)."},
			{"Driving licence (G1/G2/G)", "if you plan to drive, start the G1 theory test and bring your Indian driving history if you have it."},
			{"College / institute", "finish in-person registration and keep your student ID handy. It helps with transit and SIM discounts."},
		},
	},
	"Quebec": {
		Heading: "Quebec (Montreal)",
		Items: []Item{
			{"RAMQ health card", "Quebec's public health insurance. Some international students may use private/college plans instead."},
			{"Quebec ID / driving licence", "if you're staying long term, exchange or get a provincial licence and photo ID."},
			{"Institute", "complete registration and keep official letters/attestations handy for admin work."},
		},
	},
	"Alberta": {
		Heading: "Alberta (Calgary & Edmonton)",
		Items: []Item{
			{"Alberta Health Care (AHCIP)", "many newcomers in Alberta can register for AHCIP. Check if your status (student/worker) is eligible and register soon after arrival."},
			{"Alberta ID card", "if you don't drive, apply for an Alberta ID card for everyday identification."},
			{"Driving licence", "if you plan to drive in Calgary, start the Class 7 learner licence process and bring overseas driving history if available."},
		},
	},
	"British Columbia": {
		Heading: "British Columbia (Vancouver & Surrey)",
		Items: []Item{
			{"MSP (Medical Services Plan)", "BC's public health insurance. Most newcomers must register and there may be a waiting period, so plan private coverage for the gap."},
			{"BC ID", "if you don't drive, apply for a BC Services Card / ID for everyday use."},
			{"Driving licence", "if you plan to drive in Vancouver/Surrey, learn the Class 5 system and rules for exchanging an international licence."},
		},
	},
}

var cityBlocks = map[string]Block{
	"Toronto": {
		Heading: "Toronto",
		Items: []Item{
			{"Transit", "TTC subways, buses, and streetcars. Get a PRESTO card. Students can load a discounted monthly pass once your student ID is verified."},
			{"SIM & networks", "Bell, Rogers, TELUS have the strongest coverage; Koodo, Fido, Virgin, Freedom are cheaper options. Freedom is fine in the city core."},
			{"Where to get", "PRESTO at subway stations and Shoppers Drug Mart; SIMs at carrier kiosks in malls and big stores (Walmart, Best Buy)."},
		},
	},
	"Brampton": {
		Heading: "Brampton",
		Items: []Item{
			{"Transit", "Brampton Transit with PRESTO; connects into TTC and GO Transit for Toronto travel."},
			{"SIM & networks", "similar options as Toronto. Many students use value brands (Freedom, Fido, Koodo) depending on coverage in their area."},
			{"Where to get", "bus terminals, malls, and plazas along Hurontario, Steeles, and Queen."},
		},
	},
	"Montreal": {
		Heading: "Montreal",
		Items: []Item{
			{"Transit", "STM metro and buses. Get an OPUS card and load a monthly STM pass, with a student discount if you qualify."},
			{"SIM & networks", "Bell, Rogers, TELUS plus Videotron and Freedom. In Montreal core, Videotron/Freedom can offer good value."},
			{"Where to get", "OPUS at metro stations; SIMs at carrier stores on Sainte-Catherine and in major malls."},
		},
	},
	"Calgary": {
		Heading: "Calgary",
		Items: []Item{
			{"Transit", "Calgary Transit (C-Train + buses). Monthly passes and U-Pass options for eligible students."},
			{"SIM & networks", "major carriers have strong coverage; look at value brands for cheaper plans."},
			{"Where to get", "transit passes at C-Train stations and convenience stores; SIMs at malls and electronics stores."},
		},
	},
	"Edmonton": {
		Heading: "Edmonton",
		Items: []Item{
			{"Transit", "Edmonton Transit (LRT + buses). Monthly passes and U-Pass for eligible students."},
			{"SIM & networks", "major carriers plus value brands. Good coverage across the city."},
			{"Where to get", "transit passes at LRT stations and Shoppers; SIMs at malls and carrier stores."},
		},
	},
	"Vancouver": {
		Heading: "Vancouver",
		Items: []Item{
			{"Transit", "TransLink (SkyTrain, SeaBus, buses). Use a Compass Card and look into U-Pass if your school offers it."},
			{"SIM & networks", "major carriers plus discount brands; coverage is generally good across Metro Vancouver."},
			{"Where to get", "Compass Cards at SkyTrain stations; SIMs at Robson Street/downtown malls and suburban malls."},
		},
	},
	"Surrey": {
		Heading: "Surrey",
		Items: []Item{
			{"Transit", "also under TransLink; SkyTrain lines and buses connect Surrey to the rest of Metro Vancouver."},
			{"SIM & networks", "similar options as Vancouver. Many newcomers use value carriers with good coverage in Surrey neighbourhoods."},
			{"Where to get", "Surrey Central and Guildford area malls and plazas have multiple carrier stores."},
		},
	},
}
