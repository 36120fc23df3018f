package service

// FAQItem is one help page question.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Prerequisite is one step a creator completes before linking Snapchat.
type Prerequisite struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	Steps         []string `json:"steps"`
	EstimatedTime string   `json:"estimatedTime"`
	Link          string   `json:"link,omitempty"`
}

// Prerequisites is the connect checklist plus general notes.
type Prerequisites struct {
	Items []Prerequisite `json:"items"`
	Notes []string       `json:"notes"`
}

// ContentService serves the static help content.
type ContentService struct{}

func NewContentService() *ContentService { return &ContentService{} }

func (s *ContentService) FAQ() []FAQItem { return faq }

func (s *ContentService) Prerequisites() Prerequisites { return prerequisites }

var faq = []FAQItem{
	{
		Question: "What is DuckShots SnapAlytics?",
		Answer:   "DuckShots SnapAlytics is a powerful analytics platform designed specifically for Snapchat creators and marketers. It helps you track performance, analyze audience demographics, and optimize your content strategy.",
	},
	{
		Question: "How do I connect my Snapchat account?",
		Answer:   "Go to the Connect page and choose Connect with Snapchat. After you approve access on Snapchat you are sent back to your dashboard and we start syncing your data automatically.",
	},
	{
		Question: "What's the difference between free and premium plans?",
		Answer:   "The free plan includes basic analytics, 30-day data retention, and standard support. The premium plan adds AI-powered insights, extended data history, advanced reporting, priority support, and exports in multiple formats.",
	},
	{
		Question: "How often is my data updated?",
		Answer:   "Free accounts have data updated once every 24 hours. Premium accounts receive data updates every 15 minutes for near real-time analytics.",
	},
	{
		Question: "Can I export my data?",
		Answer:   "Yes, premium users can export their history as CSV or JSON from the Reports page. Free users can view their last 30 days of history.",
	},
	{
		Question: "How secure is my data?",
		Answer:   "We use industry-standard encryption and security practices to protect your data. Your Snapchat credentials are encrypted, and we maintain strict data access controls.",
	},
	{
		Question: "How do I cancel my subscription?",
		Answer:   "You can cancel your premium subscription at any time from the Settings page. Your premium features will remain active until the end of your current billing period.",
	},
}

var prerequisites = Prerequisites{
	Items: []Prerequisite{
		{
			Title:       "Snapchat Developer Account",
			Description: "You must have a Snapchat Developer account to access the API credentials",
			Status:      "required",
			Steps: []string{
				"Visit developers.snapchat.com",
				"Sign up with your Snapchat account",
				"Complete the developer verification process",
				"Agree to the Snapchat Developer Terms of Service",
			},
			EstimatedTime: "5-10 minutes",
			Link:          "https://developers.snapchat.com/",
		},
		{
			Title:       "Create a Snapchat App",
			Description: "Create an application in the Snapchat Developer Console to get your API credentials",
			Status:      "required",
			Steps: []string{
				"Log into the Snapchat Developer Console",
				"Click 'Create App' or 'New App'",
				"Fill in your app details (name, description, etc.)",
				"Select the appropriate app type and permissions",
				"Submit for review if required",
			},
			EstimatedTime: "10-15 minutes",
			Link:          "https://developers.snapchat.com/manage/",
		},
		{
			Title:       "API Credentials",
			Description: "Obtain your Client ID and Client Secret from your Snapchat app",
			Status:      "required",
			Steps: []string{
				"Navigate to your app in the Developer Console",
				"Go to the 'App Details' or 'Credentials' section",
				"Copy your Client ID",
				"Copy your Client Secret (API Secret Key)",
				"Keep these credentials secure and private",
			},
			EstimatedTime: "2-3 minutes",
		},
		{
			Title:       "Business Verification (Optional)",
			Description: "Some advanced features may require business verification",
			Status:      "optional",
			Steps: []string{
				"Provide business documentation",
				"Complete identity verification",
				"Wait for Snapchat's approval process",
			},
			EstimatedTime: "1-3 business days",
		},
	},
	Notes: []string{
		"Keep your API credentials secure and never share them publicly",
		"Snapchat may require app review for certain permissions",
		"API rate limits apply - check Snapchat's documentation for details",
		"Your app must comply with Snapchat's API Terms of Service",
	},
}
