package usecase

import "fmt"

// Role prompts for the four pipeline stages. Each stage consumes the user
// query plus the serialized output of the previous stage; the expected
// output shapes are requests, not guarantees, which is why everything
// downstream goes through the normalizer.

const researchRole = `You are an expert product researcher with deep knowledge of e-commerce ` +
	`and consumer goods. You excel at extracting key information like pricing, ratings, ` +
	`and specifications from search results.`

const analysisRole = `You are a meticulous product analyst who compares products objectively. ` +
	`You identify the best value propositions, highlight pros and cons, and rank products ` +
	`by price-to-performance ratio, user ratings, and feature completeness.`

const recommendationRole = `You are a friendly and knowledgeable shopping advisor who understands ` +
	`consumer needs and preferences. You translate technical product comparisons into ` +
	`easy-to-understand recommendations matching user requirements and budget.`

const purchaseRole = `You are a decisive purchase assistant who helps users make final buying ` +
	`decisions. You identify the single best option from a list of recommendations and ` +
	`provide clear, actionable next steps for purchase.`

func researchPrompt(query, productsJSON string) string {
	return fmt.Sprintf(`Search results for the query %q are provided below as JSON.

%s

Extract and structure the following information for each product:
- Title
- Price
- Rating
- Image URL
- Purchase URL
- Brief description

Return the results in JSON format with a "products" array. Respond with JSON only.`, query, productsJSON)
}

func analysisPrompt(query, researchJSON string) string {
	return fmt.Sprintf(`Analyze the products found for the query %q:

%s

Compare products based on:
- Price-to-value ratio
- User ratings and reviews
- Feature completeness
- Brand reputation (if applicable)

Rank the products from best to worst and provide reasoning.
Return the analysis in JSON format with ranked products and explanations. Respond with JSON only.`, query, researchJSON)
}

func recommendationPrompt(query, analysisJSON string) string {
	return fmt.Sprintf(`Based on this analysis, provide personalized recommendations for %q:

%s

Consider:
- The user's likely budget and needs
- Best value options
- Premium vs budget choices
- Specific use cases

Provide 2-3 top recommendations with clear explanations.
Return JSON with a "recommendations" array; each entry has a "title" and a "reason". Respond with JSON only.`, query, analysisJSON)
}

func purchasePrompt(query, recommendationJSON string) string {
	return fmt.Sprintf(`From these recommendations, identify the single BEST purchase option for %q:

%s

Highlight:
- The #1 recommended product
- Why it is the best choice
- Next steps for purchase
- Any important considerations

Return JSON with a "best_purchase_option" object (title, price, rating, purchase_url)
and a "next_steps_for_purchase" list. Respond with JSON only.`, query, recommendationJSON)
}
