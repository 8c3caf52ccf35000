package content

import (
	"fmt"
	"strings"

	"slidecraft/pkg/domain"
)

// TemplateSlide is one canned slide definition inside a topic template.
// Only the fields relevant to Layout are set.
type TemplateSlide struct {
	Title            string
	Layout           domain.SlideLayout
	BulletPoints     []string
	LeftColumn       string
	RightColumn      string
	Content          string
	ImagePlaceholder string
}

// TopicTemplate is the static per-topic data backing the final fallback tier.
type TopicTemplate struct {
	Title      string
	Slides     []TemplateSlide
	Statistics map[string]string
	KeyPlayers []string
	Trends     []string
}

type topicAlias struct {
	match string
	key   string
}

// Library holds the canned topic templates and their alias table. The data is
// immutable; unknown topics synthesize a generic template with the same shape.
type Library struct {
	topics  map[string]TopicTemplate
	aliases []topicAlias
}

// NewLibrary builds the static topic library.
func NewLibrary() *Library {
	return &Library{
		topics: builtinTopics(),
		aliases: []topicAlias{
			{"ai", "ai"},
			{"artificial intelligence", "ai"},
			{"machine learning", "machine_learning"},
			{"ml", "machine_learning"},
			{"digital transformation", "digital_transformation"},
			{"cloud computing", "cloud_computing"},
			{"cloud", "cloud_computing"},
			{"business strategy", "business_strategy"},
			{"strategy", "business_strategy"},
		},
	}
}

// Lookup returns the template for a topic, matching aliases by substring
// against the lowercased topic, or a synthesized generic template when
// nothing matches.
func (l *Library) Lookup(topic string) TopicTemplate {
	lower := strings.ToLower(topic)
	for _, alias := range l.aliases {
		if strings.Contains(lower, alias.match) {
			if tpl, ok := l.topics[alias.key]; ok {
				return tpl
			}
		}
	}
	return genericTemplate(topic)
}

// Topics returns the keys that have curated data.
func (l *Library) Topics() []string {
	keys := make([]string, 0, len(l.topics))
	for _, alias := range l.aliases {
		seen := false
		for _, k := range keys {
			if k == alias.key {
				seen = true
				break
			}
		}
		if !seen {
			keys = append(keys, alias.key)
		}
	}
	return keys
}

// genericTemplate synthesizes topic data for topics without curated content.
func genericTemplate(topic string) TopicTemplate {
	return TopicTemplate{
		Title: topic,
		Slides: []TemplateSlide{
			{
				Title:  fmt.Sprintf("Introduction to %s", topic),
				Layout: domain.LayoutBulletPoints,
				BulletPoints: []string{
					fmt.Sprintf("Definition and scope of %s", topic),
					"Historical development and evolution",
					"Current applications and use cases",
					"Future trends and opportunities",
				},
			},
			{
				Title:       fmt.Sprintf("%s Analysis", topic),
				Layout:      domain.LayoutTwoColumn,
				LeftColumn:  "Key Concepts:\n\n• Fundamental principles\n• Core methodologies\n• Essential frameworks\n• Best practices",
				RightColumn: "Applications:\n\n• Real-world examples\n• Industry implementations\n• Success stories\n• Case studies",
			},
			{
				Title:            fmt.Sprintf("Advanced %s Topics", topic),
				Layout:           domain.LayoutContentWithImage,
				Content:          fmt.Sprintf("Exploring advanced concepts and methodologies in %s", topic),
				ImagePlaceholder: fmt.Sprintf("Advanced %s concepts diagram", topic),
			},
		},
		Statistics: map[string]string{
			"market_size":   "Growing market",
			"adoption_rate": "Increasing adoption",
		},
		KeyPlayers: []string{"Industry leaders"},
		Trends:     []string{"Emerging trends", "Innovation", "Growth"},
	}
}

func builtinTopics() map[string]TopicTemplate {
	return map[string]TopicTemplate{
		"ai": {
			Title: "Artificial Intelligence",
			Slides: []TemplateSlide{
				{
					Title:  "Understanding Artificial Intelligence",
					Layout: domain.LayoutBulletPoints,
					BulletPoints: []string{
						"Definition: AI systems that can perform tasks requiring human intelligence",
						"Types: Narrow AI (specific tasks) vs General AI (human-like intelligence)",
						"Key Technologies: Machine Learning, Deep Learning, Neural Networks",
						"Applications: Healthcare, Finance, Transportation, Entertainment",
					},
				},
				{
					Title:       "AI Technologies and Applications",
					Layout:      domain.LayoutTwoColumn,
					LeftColumn:  "Core Technologies:\n\n• Machine Learning Algorithms\n• Deep Neural Networks\n• Natural Language Processing\n• Computer Vision",
					RightColumn: "Industry Applications:\n\n• Healthcare: Diagnosis & Treatment\n• Finance: Fraud Detection\n• Transportation: Autonomous Vehicles\n• Retail: Personalized Shopping",
				},
				{
					Title:            "AI Implementation Strategy",
					Layout:           domain.LayoutContentWithImage,
					Content:          "Strategic approach to implementing AI solutions in organizations",
					ImagePlaceholder: "AI implementation roadmap diagram",
				},
				{
					Title:  "AI Ethics and Future Trends",
					Layout: domain.LayoutBulletPoints,
					BulletPoints: []string{
						"Ethical Considerations: Bias, Privacy, Transparency",
						"Regulatory Framework: Data Protection and AI Governance",
						"Future Trends: Quantum AI, Edge Computing, AI Democratization",
						"Challenges: Job Displacement, Security, Trust",
					},
				},
			},
			Statistics: map[string]string{
				"market_size":   "$136.6 billion (2022)",
				"growth_rate":   "37.3% CAGR",
				"adoption_rate": "35% of organizations",
			},
			KeyPlayers: []string{"OpenAI", "Google", "Microsoft", "Amazon", "IBM"},
			Trends:     []string{"Generative AI", "Edge AI", "AI Ethics", "Quantum AI"},
		},
		"machine_learning": {
			Title: "Machine Learning",
			Slides: []TemplateSlide{
				{
					Title:  "Machine Learning Fundamentals",
					Layout: domain.LayoutBulletPoints,
					BulletPoints: []string{
						"Definition: Algorithms that learn patterns from data",
						"Types: Supervised, Unsupervised, Reinforcement Learning",
						"Key Concepts: Training, Testing, Validation, Overfitting",
						"Applications: Prediction, Classification, Clustering, Recommendation",
					},
				},
				{
					Title:       "ML Algorithms and Techniques",
					Layout:      domain.LayoutTwoColumn,
					LeftColumn:  "Supervised Learning:\n\n• Linear Regression\n• Logistic Regression\n• Decision Trees\n• Random Forest\n• Support Vector Machines",
					RightColumn: "Unsupervised Learning:\n\n• K-Means Clustering\n• Hierarchical Clustering\n• Principal Component Analysis\n• Autoencoders\n• Generative Models",
				},
				{
					Title:            "Deep Learning and Neural Networks",
					Layout:           domain.LayoutContentWithImage,
					Content:          "Advanced machine learning using neural networks with multiple layers",
					ImagePlaceholder: "Neural network architecture diagram",
				},
				{
					Title:  "ML Implementation Best Practices",
					Layout: domain.LayoutBulletPoints,
					BulletPoints: []string{
						"Data Quality: Clean, relevant, and sufficient data",
						"Model Selection: Choose appropriate algorithms for the problem",
						"Evaluation: Use proper metrics and validation techniques",
						"Deployment: Monitor, maintain, and update models",
					},
				},
			},
			Statistics: map[string]string{
				"market_size":   "$21.17 billion (2022)",
				"growth_rate":   "38.8% CAGR",
				"adoption_rate": "57% of organizations",
			},
			KeyPlayers: []string{"Google", "Microsoft", "Amazon", "IBM", "Facebook"},
			Trends:     []string{"AutoML", "MLOps", "Federated Learning", "Explainable AI"},
		},
		"digital_transformation": {
			Title: "Digital Transformation",
			Slides: []TemplateSlide{
				{
					Title:  "Digital Transformation Overview",
					Layout: domain.LayoutBulletPoints,
					BulletPoints: []string{
						"Definition: Integration of digital technology into all business areas",
						"Key Drivers: Customer expectations, competitive pressure, efficiency gains",
						"Technologies: Cloud Computing, IoT, Big Data, Mobile",
						"Benefits: Improved efficiency, better customer experience, cost reduction",
					},
				},
				{
					Title:       "Technology Implementation Framework",
					Layout:      domain.LayoutTwoColumn,
					LeftColumn:  "Planning Phase:\n\n• Assessment & Strategy\n• Technology Selection\n• Resource Planning\n• Risk Management",
					RightColumn: "Execution Phase:\n\n• Pilot Programs\n• Training & Adoption\n• Integration\n• Monitoring",
				},
				{
					Title:            "Emerging Technology Trends",
					Layout:           domain.LayoutContentWithImage,
					Content:          "Latest developments in technology that are shaping the future",
					ImagePlaceholder: "Technology trends timeline diagram",
				},
			},
			Statistics: map[string]string{
				"market_size":   "$1.8 trillion (2022)",
				"growth_rate":   "23% CAGR",
				"adoption_rate": "70% of organizations",
			},
			KeyPlayers: []string{"Microsoft", "Google", "Amazon", "Salesforce", "Oracle"},
			Trends:     []string{"Cloud Migration", "AI Integration", "Remote Work", "Cybersecurity"},
		},
		"cloud_computing": {
			Title: "Cloud Computing",
			Slides: []TemplateSlide{
				{
					Title:  "Cloud Computing Fundamentals",
					Layout: domain.LayoutBulletPoints,
					BulletPoints: []string{
						"Definition: On-demand computing resources over the internet",
						"Service Models: IaaS, PaaS, SaaS",
						"Deployment Models: Public, Private, Hybrid, Multi-cloud",
						"Benefits: Scalability, Cost-effectiveness, Flexibility, Security",
					},
				},
				{
					Title:       "Cloud Service Models",
					Layout:      domain.LayoutTwoColumn,
					LeftColumn:  "Infrastructure as a Service (IaaS):\n\n• Virtual Machines\n• Storage\n• Networking\n• Load Balancers",
					RightColumn: "Platform as a Service (PaaS):\n\n• Development Tools\n• Database Management\n• Business Analytics\n• Operating Systems",
				},
				{
					Title:            "Cloud Security and Compliance",
					Layout:           domain.LayoutContentWithImage,
					Content:          "Security measures and compliance standards for cloud environments",
					ImagePlaceholder: "Cloud security framework diagram",
				},
			},
			Statistics: map[string]string{
				"market_size":   "$371.4 billion (2022)",
				"growth_rate":   "17.5% CAGR",
				"adoption_rate": "94% of organizations",
			},
			KeyPlayers: []string{"AWS", "Microsoft Azure", "Google Cloud", "IBM", "Oracle"},
			Trends:     []string{"Multi-cloud", "Edge Computing", "Serverless", "Green Cloud"},
		},
		"business_strategy": {
			Title: "Business Strategy",
			Slides: []TemplateSlide{
				{
					Title:  "Strategic Business Planning",
					Layout: domain.LayoutBulletPoints,
					BulletPoints: []string{
						"Vision and Mission: Clear organizational direction and purpose",
						"Market Analysis: Understanding competition and opportunities",
						"Resource Allocation: Optimal distribution of time, money, and talent",
						"Performance Metrics: KPIs and success measurement",
					},
				},
				{
					Title:       "Business Strategy Framework",
					Layout:      domain.LayoutTwoColumn,
					LeftColumn:  "Internal Analysis:\n\n• Strengths & Weaknesses\n• Core Competencies\n• Resource Assessment\n• Organizational Culture",
					RightColumn: "External Analysis:\n\n• Market Opportunities\n• Competitive Threats\n• Industry Trends\n• Regulatory Environment",
				},
				{
					Title:            "Leadership and Management",
					Layout:           domain.LayoutContentWithImage,
					Content:          "Effective leadership strategies for organizational success",
					ImagePlaceholder: "Leadership framework diagram",
				},
			},
			Statistics: map[string]string{
				"success_rate":      "67% of strategic initiatives succeed",
				"time_to_implement": "3-5 years average",
				"roi":               "2.5x average return on strategy investment",
			},
			KeyPlayers: []string{"SWOT Analysis", "Porter's Five Forces", "Balanced Scorecard", "Blue Ocean Strategy"},
			Trends:     []string{"Digital Strategy", "Sustainability", "Agile Strategy", "Data-Driven Decisions"},
		},
	}
}
