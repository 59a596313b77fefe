// Package rules holds the SDI policy rule set used to steer claim
// adjudication. The rule set is runtime configuration data, not code: the
// document policy, charge classification, and decline conditions can all be
// changed by editing a YAML file, without touching the decision engine.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type DocumentTypes struct {
	Required     []string          `yaml:"required"`
	Optional     []string          `yaml:"optional"`
	Descriptions map[string]string `yaml:"descriptions"`
}

type ChargeClass struct {
	Description string   `yaml:"description"`
	Examples    []string `yaml:"examples"`
}

type ChargeClassification struct {
	Approved ChargeClass `yaml:"approved"`
	Excluded ChargeClass `yaml:"excluded"`
}

type PaymentCheck struct {
	Required    bool   `yaml:"required"`
	Description string `yaml:"description"`
}

type PaymentVerification struct {
	FirstMonthRent    PaymentCheck `yaml:"first_month_rent"`
	FirstMonthPremium PaymentCheck `yaml:"first_month_premium"`
}

type StatusRules struct {
	AutoDeclineConditions []string `yaml:"auto_decline_conditions"`
	ApprovalConditions    []string `yaml:"approval_conditions"`
}

type RuleSet struct {
	DocumentTypes        DocumentTypes        `yaml:"document_types"`
	ChargeClassification ChargeClassification `yaml:"charge_classification"`
	PaymentVerification  PaymentVerification  `yaml:"payment_verification"`
	StatusRules          StatusRules          `yaml:"status_rules"`
}

// Default returns the built-in SDI policy rule set. The hard document gate
// (missing required documents auto-decline) is expressed here as data; a
// soft best-effort policy is the same rule set without that condition.
func Default() *RuleSet {
	return &RuleSet{
		DocumentTypes: DocumentTypes{
			Required: []string{
				"lease_addendum",
				"lease_agreement",
				"notification_to_tenant",
				"tenant_ledger",
			},
			Optional: []string{"invoice", "claim_evaluation_report"},
			Descriptions: map[string]string{
				"lease_addendum":          "Security deposit addendum or SDI addendum that outlines the security deposit insurance terms",
				"lease_agreement":         "The main lease agreement between tenant and landlord",
				"notification_to_tenant":  "Move-out notice or notification sent to tenant regarding move-out procedures",
				"tenant_ledger":           "Account ledger showing charges, payments, and account balance",
				"invoice":                 "Invoice or bill for specific charges related to the property",
				"claim_evaluation_report": "Report evaluating the claim and its associated charges",
			},
		},
		ChargeClassification: ChargeClassification{
			Approved: ChargeClass{
				Description: "Charges that are covered by SDI policy. These include normal wear and tear, cleaning, repairs, and damages that are the tenant's responsibility.",
				Examples: []string{
					"Cleaning fees",
					"Repair costs for tenant damage",
					"Normal wear and tear repairs",
					"Property damage caused by tenant",
					"Maintenance charges for tenant-caused issues",
				},
			},
			Excluded: ChargeClass{
				Description: "Charges that are NOT covered by SDI policy. These should be excluded from the approved benefit amount.",
				Examples: []string{
					"Unpaid rent",
					"Late fees",
					"Pet fees and pet-related damages",
					"Non-refundable fees",
					"Charges clearly outside the lease terms",
					"Charges that exceed reasonable amounts",
				},
			},
		},
		PaymentVerification: PaymentVerification{
			FirstMonthRent: PaymentCheck{
				Required:    true,
				Description: "First month's rent must be paid for the claim to be valid. Check the tenant ledger or payment records.",
			},
			FirstMonthPremium: PaymentCheck{
				Required:    true,
				Description: "First month's SDI premium must be paid for the claim to be valid. Look for 'SDRP Monthly Premium' or similar charges in the ledger.",
			},
		},
		StatusRules: StatusRules{
			AutoDeclineConditions: []string{
				"Missing required documents",
				"First month's rent not paid",
				"First month's SDI premium not paid",
			},
			ApprovalConditions: []string{
				"All required documents present",
				"First month's rent paid",
				"First month's SDI premium paid",
				"Valid approved charges exist",
			},
		},
	}
}

// Load reads a rule set from a YAML file. An empty path selects the
// built-in default.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	return &rs, nil
}

// KnownDocumentTypes returns the set of document types the rule set speaks
// about. The decision engine rejects model responses naming types outside it.
func (r *RuleSet) KnownDocumentTypes() map[string]bool {
	known := make(map[string]bool, len(r.DocumentTypes.Required)+len(r.DocumentTypes.Optional))
	for _, t := range r.DocumentTypes.Required {
		known[t] = true
	}
	for _, t := range r.DocumentTypes.Optional {
		known[t] = true
	}
	return known
}

// PromptText renders the full rule set for the Phase 1 analysis prompt.
func (r *RuleSet) PromptText() string {
	var b strings.Builder
	b.WriteString("SDI POLICY RULES:\n\n")

	b.WriteString("REQUIRED DOCUMENTS:\n")
	for _, docType := range r.DocumentTypes.Required {
		fmt.Fprintf(&b, "- %s: %s\n", docType, r.DocumentTypes.Descriptions[docType])
	}

	b.WriteString("\nOPTIONAL DOCUMENTS:\n")
	for _, docType := range r.DocumentTypes.Optional {
		fmt.Fprintf(&b, "- %s: %s\n", docType, r.DocumentTypes.Descriptions[docType])
	}

	b.WriteString("\nPAYMENT VERIFICATION REQUIREMENTS:\n")
	if r.PaymentVerification.FirstMonthRent.Required {
		fmt.Fprintf(&b, "- First Month Rent: %s\n", r.PaymentVerification.FirstMonthRent.Description)
	}
	if r.PaymentVerification.FirstMonthPremium.Required {
		fmt.Fprintf(&b, "- First Month SDI Premium: %s\n", r.PaymentVerification.FirstMonthPremium.Description)
	}

	b.WriteString("\nCHARGE CLASSIFICATION RULES:\n")
	fmt.Fprintf(&b, "APPROVED (Covered by SDI): %s\n", r.ChargeClassification.Approved.Description)
	fmt.Fprintf(&b, "Examples: %s\n\n", strings.Join(r.ChargeClassification.Approved.Examples, ", "))
	fmt.Fprintf(&b, "EXCLUDED (Not covered): %s\n", r.ChargeClassification.Excluded.Description)
	fmt.Fprintf(&b, "Examples: %s\n", strings.Join(r.ChargeClassification.Excluded.Examples, ", "))

	b.WriteString("\nCLAIM STATUS RULES:\n")
	b.WriteString("A claim will be DECLINED if:\n")
	for _, condition := range r.StatusRules.AutoDeclineConditions {
		fmt.Fprintf(&b, "- %s\n", condition)
	}
	b.WriteString("\nA claim will be APPROVED if:\n")
	for _, condition := range r.StatusRules.ApprovalConditions {
		fmt.Fprintf(&b, "- %s\n", condition)
	}

	return b.String()
}

// ChargeRulesText renders only the charge classification rules for the
// Phase 2 prompt.
func (r *RuleSet) ChargeRulesText() string {
	return fmt.Sprintf(`CHARGE CLASSIFICATION RULES:

APPROVED (covered by SDI policy): %s
Examples: %s

EXCLUDED (not covered by SDI policy): %s
Examples: %s`,
		r.ChargeClassification.Approved.Description,
		strings.Join(r.ChargeClassification.Approved.Examples, ", "),
		r.ChargeClassification.Excluded.Description,
		strings.Join(r.ChargeClassification.Excluded.Examples, ", "),
	)
}
