package llmextract

import "fmt"

// systemPrompt is fixed; the extraction contract lives in the user message.
const systemPrompt = "You are a helpful assistant. Your task is to extract invoice data and return it in valid JSON format."

// attributes the model is asked to extract, in prompt order.
var attributes = []string{
	"invoice_number",
	"invoice_date",
	"supplier_name",
	"tax_id",
	"bank_account",
	"total_amount",
	"line_items",
	"description",
	"quantity",
	"unit_price",
}

// exampleFormat shows the model the exact response shape we expect.
const exampleFormat = `
{
  "invoice_number": "61356291",
  "invoice_date": "09/06/2012",
  "supplier_name": "Chapman, Kim and Green",
  "tax_id": "949-84-9105",
  "bank_account": "GB50ACIE59715038217063",
  "total_amount": 9,
  "line_items": [
    {
      "description": "With Hooks Stemware Storage Multiple Uses Iron Wine Rack",
      "quantity": 4,
      "unit_price": 12
    },
    {
      "description": "HOME ESSENTIALS GRADIENT STEMLESS WINE GLASSES SET OF 4",
      "quantity": 1,
      "unit_price": 28.08
    }
  ]
}
`

// BuildUserPrompt packages the converted text with the attribute list and the
// worked example.
func BuildUserPrompt(text string) string {
	return fmt.Sprintf(`Extract the following attributes from the text: %v.
Here is the text: %s
Return the data in valid JSON format as shown in this example:
%s
Make sure your response is properly formatted valid JSON that can be parsed directly.`, attributes, text, exampleFormat)
}
