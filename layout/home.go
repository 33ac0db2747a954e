package layout

import "github.com/yeremiapane/food-delivery-web/models"

type HeroSlide struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"imageUrl"`
	CTALabel string `json:"ctaLabel"`
	CTAPath  string `json:"ctaPath"`
}

type Testimonial struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Quote  string `json:"quote"`
	Rating int    `json:"rating"`
}

type Pitch struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Points []string `json:"points"`
}

// Home is everything the landing page renders. Animation stays in the browser.
type Home struct {
	Slides       []HeroSlide         `json:"slides"`
	Marquee      []models.Restaurant `json:"marquee"`
	Testimonials []Testimonial       `json:"testimonials"`
	Delivery     Pitch               `json:"delivery"`
}

var heroSlides = []HeroSlide{
	{
		Title:    "Your favourite food, delivered fast",
		Subtitle: "Order from the best restaurants near you",
		ImageURL: "/images/hero/food.jpg",
		CTALabel: "Order now",
		CTAPath:  "/restaurants",
	},
	{
		Title:    "Grow your restaurant with us",
		Subtitle: "Reach more customers across Sri Lanka",
		ImageURL: "/images/hero/restaurant.jpg",
		CTALabel: "Partner with us",
		CTAPath:  "/restaurant/register",
	},
	{
		Title:    "Ride and earn on your schedule",
		Subtitle: "Join our delivery team today",
		ImageURL: "/images/hero/driver.jpg",
		CTALabel: "Become a driver",
		CTAPath:  "/driver/register",
	},
}

var testimonials = []Testimonial{
	{Name: "Dilani Fernando", Role: "Customer", Quote: "Hot food at my door every time. The tracking is spot on.", Rating: 5},
	{Name: "Ruwan Silva", Role: "Restaurant owner", Quote: "Our weekend orders doubled after joining.", Rating: 5},
	{Name: "Kasun Jayawardena", Role: "Delivery partner", Quote: "I pick my own hours and get paid weekly.", Rating: 4},
}

var deliveryPitch = Pitch{
	Title: "Fast and reliable delivery",
	Body:  "Every order is tracked from the kitchen to your door.",
	Points: []string{
		"Live driver location",
		"Cash on delivery or card",
		"Island-wide restaurant partners",
	},
}

// HomeContent assembles the landing page around the given marquee restaurants.
func HomeContent(marquee []models.Restaurant) Home {
	if marquee == nil {
		marquee = []models.Restaurant{}
	}
	return Home{
		Slides:       heroSlides,
		Marquee:      marquee,
		Testimonials: testimonials,
		Delivery:     deliveryPitch,
	}
}
