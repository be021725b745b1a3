package ai

import "fmt"

// profilePromptTemplate instructs the model to return one JSON object with
// the exact field names profilePayload decodes.
const profilePromptTemplate = `
You are an expert LinkedIn profile data extraction specialist with deep understanding of professional profile structures and date formats. Your task is to meticulously extract structured information from the LinkedIn profile text below and return a perfectly formatted JSON object.
CRITICAL REQUIREMENTS:
1. Return ONLY valid JSON - no explanations, comments, or additional text
2. Use double quotes for all JSON keys and string values
3. Handle missing information gracefully with appropriate defaults
4. Pay special attention to date extraction and formatting
5. Preserve all professional details accurately
EXTRACTION GUIDELINES:
**DATE FORMATS TO RECOGNIZE:**
- Full dates: "January 2020", "Jan 2020", "2020-01", "01/2020"
- Year only: "2020", "2021"
- Present/Current: "Present", "Current", "Now", "Ongoing"
- Partial dates: "Q1 2020", "Spring 2021", "Summer 2022"
- Duration formats: "2 years 3 months", "6 months"
**EXPERIENCE EXTRACTION:**
- Extract ALL work experiences, internships, volunteer work, and freelance projects
- For each experience, capture: job title, company name, employment type (if mentioned), precise start/end dates, location, and comprehensive description
- Look for keywords like: "at", "with", "worked as", "employed by", "consultant for"
- Pay attention to date ranges separated by "-", "to", "through"
**EDUCATION EXTRACTION:**
- Extract ALL educational institutions, certifications, courses, and training programs
- For each education entry, capture: institution name, degree/certification type, field of study, graduation date or date range, GPA (if mentioned), honors/achievements
- Look for: universities, colleges, online courses, bootcamps, professional certifications
**SKILLS EXTRACTION:**
- Extract technical skills, soft skills, languages, tools, frameworks, methodologies
- Look in dedicated skills sections and also mentioned throughout experience descriptions
- Include proficiency levels if mentioned
**OUTPUT FORMAT:**
Return a JSON object with these exact field names:
{
  "Name": "string",
  "Headline": "string",
  "Location": "string",
  "About": "string",
  "Experience": [
    {
      "Title": "string",
      "Company": "string",
      "Employment_Type": "string",
      "Start_Date": "string",
      "End_Date": "string",
      "Duration": "string",
      "Location": "string",
      "Description": "string"
    }
  ],
  "Education": [
    {
      "Institution": "string",
      "Degree": "string",
      "Field_of_Study": "string",
      "Start_Date": "string",
      "End_Date": "string",
      "Grade": "string",
      "Activities": "string"
    }
  ],
  "Skills": "comma-separated string of all skills",
  "Certifications": "comma-separated string of certifications",
  "Languages": "comma-separated string of languages"
}
DEFAULT VALUES:
- Use empty string "" for missing text fields
- Use empty array [] for missing Experience/Education
- For dates: use "Not specified" if completely missing
- For End_Date: use "Present" if still ongoing
LINKEDIN PROFILE TEXT:
%s
`

func profilePrompt(content string) string {
	return fmt.Sprintf(profilePromptTemplate, content)
}

// postSystemPrompt frames the content-generation persona and output rules.
const postSystemPrompt = `You are an elite LinkedIn content strategist who creates viral, thought-provoking posts for industry leaders. Your task is to create ONE exceptional, ready-to-post LinkedIn post that drives massive engagement.

CONTENT EXCELLENCE STANDARDS:
- Start with a POWERFUL hook that creates immediate curiosity or surprise
- 400-600 words (longer, richer content)
- Include specific examples, data, or case studies
- Share contrarian insights or challenge industry assumptions
- Provide actionable takeaways or frameworks
- Use storytelling techniques (problem -> insight -> solution -> lesson)
- End with a thought-provoking question that sparks meaningful debate

FORMATTING FOR VIRALITY:
- Strategic use of line breaks for mobile readability
- Bullet points or numbered lists for key insights
- Selective emoji usage for emphasis (not decoration)
- 5-7 strategic hashtags for maximum reach
- Professional yet authentic and conversational tone

OUTPUT REQUIREMENTS:
- Output ONLY the final LinkedIn post
- NO analysis, explanations, or meta-commentary
- Create content that stops the scroll and demands engagement
- Focus on delivering exceptional value that people want to share`

func postPrompt(subject, description string) string {
	prompt := postSystemPrompt + fmt.Sprintf(`

Create ONE exceptional LinkedIn post about %s that goes viral.
`, subject)
	if description != "" {
		prompt += fmt.Sprintf(`
ADDITIONAL DESCRIPTION/FEEDBACK:
%s

Please incorporate this feedback and direction into your post creation.
`, description)
	}
	prompt += `
Create a thought-provoking, insight-rich LinkedIn post that challenges conventional thinking and delivers massive value. Include specific examples, actionable frameworks, and bold insights that position the author as a visionary thought leader.

Output only the final post - no analysis or commentary.
`
	return prompt
}
