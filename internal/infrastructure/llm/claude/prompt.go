package claude

import (
	"fmt"
	"strings"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/rules"
)

func buildInitialPrompt(claim domain.ClaimRecord, ruleSet *rules.RuleSet) string {
	return fmt.Sprintf(`You are analyzing a Security Deposit Insurance (SDI) claim. Your task is to:

1. CLASSIFY DOCUMENTS: For each document, classify its type(s). A document can have multiple types.

2. EXTRACT TENANT NAME: Find and extract the tenant's full name from the documents.

3. VERIFY FIRST MONTH RENT PAYMENT: Determine if the first month's rent was paid. Provide clear evidence (quote from document or explanation).

4. VERIFY FIRST MONTH SDI PREMIUM PAYMENT: Determine if the first month's SDI premium was paid. Provide clear evidence (quote from document or explanation).

5. IDENTIFY MISSING REQUIRED DOCUMENTS: Check if all required documents are present.

%s

Claim Information:
- Tracking Number: %s
- Property Address: %s
- Lease Start Date: %s
- Lease End Date: %s
- Move Out Date: %s
- Monthly Rent: $%g
- Max Benefit: $%g

Return a JSON object matching this exact structure:
{
  "tenantName": "Full Name from Documents",
  "status": "approved" or "declined" (decline if missing required documents or payment issues),
  "isFirstMonthPaid": true/false,
  "firstMonthPaidEvidence": "Evidence or explanation",
  "isFirstMonthSDIPremiumPaid": true/false,
  "firstMonthSDIPremiumPaidEvidence": "Evidence or explanation",
  "missingRequiredDocuments": ["array", "of", "missing", "types"],
  "submittedDocuments": [
    {
      "types": ["array", "of", "document", "types"],
      "name": "document filename",
      "path": "document path"
    }
  ],
  "decisionSummary": ""
}

Important: Return ONLY valid JSON, no markdown formatting or code blocks.`,
		ruleSet.PromptText(),
		claim.TrackingNumber,
		orNotProvided(claim.PropertyAddress),
		orNotProvided(domain.FormatClaimDate(claim.LeaseStartDate)),
		orNotProvided(domain.FormatClaimDate(claim.LeaseEndDate)),
		orNotProvided(domain.FormatClaimDate(claim.MoveOutDate)),
		claim.MonthlyRentOrZero(),
		claim.MaxBenefitOrZero(),
	)
}

func buildChargesPrompt(claim domain.ClaimRecord, initial domain.ClaimResult, ruleSet *rules.RuleSet) string {
	missing := strings.Join(initial.MissingRequiredDocuments, ", ")
	if missing == "" {
		missing = "None"
	}

	return fmt.Sprintf(`You are analyzing charges for a Security Deposit Insurance (SDI) claim. Your task is to:

1. EXTRACT ALL CHARGES: Find all charges, line items, or deductions from the documents. Look in:
   - Tenant ledgers
   - Move-out statements
   - Invoices
   - Claim evaluation reports

2. CLASSIFY CHARGES: For each charge, determine if it is APPROVED or EXCLUDED.

%s

3. PROVIDE DETAILS: For each charge, provide:
   - description: Clear description of the charge
   - amount: The dollar amount (as a number)
   - category: Optional category (e.g., "cleaning", "repair", "damage", "unpaid_rent", etc.)

Claim Information:
- Tracking Number: %s
- Tenant Name: %s
- Monthly Rent: $%g
- Max Benefit: $%g
- Status: %s
- Missing Required Documents: %s

Initial Analysis Results:
- First Month Rent Paid: %t (%s)
- First Month SDI Premium Paid: %t (%s)

Return a JSON object with this structure:
{
  "approvedCharges": [
    {
      "description": "Description of approved charge",
      "amount": 100.00,
      "category": "cleaning"
    }
  ],
  "excludedCharges": [
    {
      "description": "Description of excluded charge",
      "amount": 50.00,
      "category": "unpaid_rent"
    }
  ],
  "decisionSummary": "A comprehensive summary explaining: why the claim was approved or declined, key findings from document analysis, rationale for charge classifications, and any important notes."
}

Important:
- Return ONLY valid JSON, no markdown formatting or code blocks.
- Calculate amounts accurately from the documents.
- Be thorough in finding all charges.
- The decision summary should be detailed and professional.`,
		ruleSet.ChargeRulesText(),
		claim.TrackingNumber,
		initial.TenantName,
		claim.MonthlyRentOrZero(),
		claim.MaxBenefitOrZero(),
		initial.Status,
		missing,
		initial.IsFirstMonthRentPaid,
		initial.FirstMonthRentPaidEvidence,
		initial.IsFirstMonthPremiumPaid,
		initial.FirstMonthPremiumPaidEvidence,
	)
}

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Not provided"
	}
	return value
}
