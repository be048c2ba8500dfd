package seeders

import (
	"log"

	"thaitour_go/config"
	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/services"
	"thaitour_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedAdmin()
	SeedCountries()
	SeedTrips()
	SeedFAQs()

	log.Println("Database seeding completed successfully!")
}

// SeedAdmin creates the bootstrap admin when the users table is empty
func SeedAdmin() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	username, password := "admin", ""
	if config.AppConfig != nil {
		username, password = config.AppConfig.AdminUsername, config.AppConfig.AdminPassword
	}
	if password == "" {
		generated, err := utils.GenerateRandomString(12)
		if err != nil {
			log.Printf("Error generating admin password: %v", err)
			return
		}
		password = generated
		log.Printf("ADMIN_PASSWORD not set, generated password for %s: %s", username, password)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := models.User{
		Username:    username,
		Password:    hashed,
		DisplayName: "Administrator",
		Role:        models.RoleAdmin,
		Status:      "active",
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}
	log.Println("Admin user seeded successfully")
}

// SeedCountries seeds the destinations the site starts with
func SeedCountries() {
	var count int64
	database.DB.Model(&models.Country{}).Count(&count)
	if count > 0 {
		log.Println("Countries already seeded, skipping...")
		return
	}

	countries := []models.Country{
		{NameTh: "ญี่ปุ่น", NameEn: "Japan", Code: "JP", Flag: "🇯🇵", SortOrder: 1, IsActive: true},
		{NameTh: "เกาหลีใต้", NameEn: "South Korea", Code: "KR", Flag: "🇰🇷", SortOrder: 2, IsActive: true},
		{NameTh: "ไต้หวัน", NameEn: "Taiwan", Code: "TW", Flag: "🇹🇼", SortOrder: 3, IsActive: true},
		{NameTh: "เวียดนาม", NameEn: "Vietnam", Code: "VN", Flag: "🇻🇳", SortOrder: 4, IsActive: true},
		{NameTh: "จีน", NameEn: "China", Code: "CN", Flag: "🇨🇳", SortOrder: 5, IsActive: true},
	}

	for _, country := range countries {
		if err := database.DB.Create(&country).Error; err != nil {
			log.Printf("Error seeding country %s: %v", country.Code, err)
		}
	}

	log.Println("Countries seeded successfully")
}

type seedTrip struct {
	CountryCode string
	Trip        models.Trip
	Price       string
	Departures  [][2]string // dates text, slots text
}

// SeedTrips creates sample trips from legacy style date and seat strings
func SeedTrips() {
	var count int64
	database.DB.Model(&models.Trip{}).Count(&count)
	if count > 0 {
		log.Println("Trips already seeded, skipping...")
		return
	}

	year := 0
	if config.AppConfig != nil {
		year = config.AppConfig.SeasonYear
	}

	trips := []seedTrip{
		{
			CountryCode: "JP",
			Trip: models.Trip{
				Title:      "ฮอกไกโด ซัปโปโร เทศกาลหิมะ",
				Slug:       "hokkaido-snow-festival",
				Summary:    "ชมเทศกาลหิมะซัปโปโร ล่องเรือตัดน้ำแข็ง แช่ออนเซ็น",
				TripType:   models.TripTypeGroup,
				IsFeatured: true,
			},
			Price:      "65,900.-",
			Departures: [][2]string{{"4-11 ก.พ.", "รับ 10 ท่าน"}, {"13-20 ก.พ.", "เหลือ 4 ที่"}},
		},
		{
			CountryCode: "KR",
			Trip: models.Trip{
				Title:    "โซล ปีใหม่ ซอรัคซาน",
				Slug:     "seoul-new-year",
				Summary:  "เคาท์ดาวน์ที่โซล เล่นสกี ชมหิมะที่ซอรัคซาน",
				TripType: models.TripTypeGroup,
			},
			Price:      "39,900 บาท",
			Departures: [][2]string{{"29 ธ.ค. - 6 ม.ค.", "8"}},
		},
		{
			CountryCode: "TW",
			Trip: models.Trip{
				Title:    "ไทเป อาลีซาน ส่วนตัว",
				Slug:     "taipei-alishan-private",
				Summary:  "ทริปส่วนตัว เลือกวันเดินทางได้",
				TripType: models.TripTypePrivate,
			},
			Price:      "฿28,500",
			Departures: [][2]string{{"28 ก.พ. - 5 มี.ค.", "เต็ม"}},
		},
	}

	for _, st := range trips {
		var country models.Country
		if err := database.DB.Where("code = ?", st.CountryCode).First(&country).Error; err != nil {
			log.Printf("Error seeding trip %s: country %s missing", st.Trip.Slug, st.CountryCode)
			continue
		}

		trip := st.Trip
		trip.CountryID = country.ID
		trip.IsActive = true
		trip.PricePerPerson = utils.ParsePrice(st.Price)
		if err := database.DB.Create(&trip).Error; err != nil {
			log.Printf("Error seeding trip %s: %v", trip.Slug, err)
			continue
		}

		for _, dep := range st.Departures {
			schedule := models.TripSchedule{TripID: trip.ID, IsActive: true}
			if err := services.ApplyScheduleInput(&schedule, services.ScheduleInput{
				DateRangeText: dep[0],
				SlotsText:     dep[1],
				TotalSeats:    intPtr(services.DefaultLegacyTotalSeats),
			}, year); err != nil {
				log.Printf("Error seeding schedule %q for %s: %v", dep[0], trip.Slug, err)
				continue
			}
			if err := database.DB.Omit("Trip").Create(&schedule).Error; err != nil {
				log.Printf("Error seeding schedule %q for %s: %v", dep[0], trip.Slug, err)
			}
		}
	}

	log.Println("Trips seeded successfully")
}

// SeedFAQs seeds general questions shown on the FAQ page
func SeedFAQs() {
	var count int64
	database.DB.Model(&models.FAQ{}).Count(&count)
	if count > 0 {
		log.Println("FAQs already seeded, skipping...")
		return
	}

	faqs := []models.FAQ{
		{Question: "จองทริปได้อย่างไร", Answer: "ทักไลน์ OA หรือโทรหาเจ้าหน้าที่เพื่อสำรองที่นั่ง", SortOrder: 1, IsActive: true},
		{Question: "ราคารวมตั๋วเครื่องบินหรือไม่", Answer: "ราคารวมตั๋วเครื่องบินไป-กลับ ที่พัก อาหารตามรายการ และประกันการเดินทาง", SortOrder: 2, IsActive: true},
	}
	for _, faq := range faqs {
		if err := database.DB.Create(&faq).Error; err != nil {
			log.Printf("Error seeding FAQ: %v", err)
		}
	}
	log.Println("FAQs seeded successfully")
}

func intPtr(v int) *int { return &v }
