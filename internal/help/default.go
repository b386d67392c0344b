package help

// Default returns the built-in help center document. The store seeds itself
// from this when no content has been imported yet.
func Default() *Response {
	return &Response{
		Title: "LoanBuddy Help Center",
		Sections: []Section{
			{
				ID:    "how_it_works",
				Title: "How LoanBuddy Works",
				Items: []string{
					"Select your loan purpose",
					"Enter loan amount and tenure",
					"Upload required documents",
					"Eligibility check is done instantly",
					"Get EMI details and sanction letter",
				},
			},
			{
				ID:    "documents",
				Title: "Required Documents",
				Items: []string{
					"Latest Salary Slip (PDF or Image)",
					"Government ID (Aadhaar / PAN)",
					"Optional: Last 3 months bank statement",
				},
			},
			{
				ID:    "emi",
				Title: "EMI & Interest",
				Items: []string{
					"Interest rates start from 14% p.a.",
					"EMI depends on loan amount and tenure",
					"No hidden charges",
				},
			},
			{
				ID:    "chatbot",
				Title: "Using the Chatbot",
				Items: []string{
					"Ask: Am I eligible for a loan?",
					"Ask: Calculate EMI for 5 lakh",
					"Say: I have uploaded my salary slip",
					"Ask: Show my loan status",
				},
			},
			{
				ID:    "faq",
				Title: "FAQs",
				Items: []string{
					"Loan approval usually takes a few minutes",
					"Loan amount may vary based on salary",
					"Pre-closure is allowed",
				},
			},
			{
				ID:    "support",
				Title: "Support",
				Items: []string{
					"Email: support@loanbuddy.ai",
					"Helpline: 1800-XXX-XXXX",
					"Support Hours: 9 AM - 6 PM",
				},
			},
		},
	}
}
