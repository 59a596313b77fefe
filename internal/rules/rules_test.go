package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultKnownDocumentTypes(t *testing.T) {
	known := Default().KnownDocumentTypes()
	for _, docType := range []string{"lease_agreement", "lease_addendum", "notification_to_tenant", "tenant_ledger", "invoice", "claim_evaluation_report"} {
		if !known[docType] {
			t.Errorf("expected %q to be known", docType)
		}
	}
	if known["bank_statement"] {
		t.Errorf("unexpected document type in the default set")
	}
}

func TestLoadEmptyPathSelectsDefault(t *testing.T) {
	rs, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rs.DocumentTypes.Required) != 4 {
		t.Fatalf("required documents = %+v", rs.DocumentTypes.Required)
	}
}

func TestLoadYAMLOverridesPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
document_types:
  required:
    - lease_agreement
  optional:
    - invoice
  descriptions:
    lease_agreement: "The signed lease"
    invoice: "A bill"
payment_verification:
  first_month_rent:
    required: false
    description: "Not checked under this policy"
  first_month_premium:
    required: true
    description: "Premium must be paid"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rs.DocumentTypes.Required) != 1 || rs.DocumentTypes.Required[0] != "lease_agreement" {
		t.Fatalf("required documents = %+v", rs.DocumentTypes.Required)
	}
	if rs.PaymentVerification.FirstMonthRent.Required {
		t.Fatalf("first month rent check should be off")
	}

	prompt := rs.PromptText()
	if strings.Contains(prompt, "First Month Rent:") {
		t.Errorf("disabled payment check must not appear in the prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Premium must be paid") {
		t.Errorf("enabled payment check missing from the prompt:\n%s", prompt)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected an error for a missing rules file")
	}
}

func TestPromptTextCoversAllSections(t *testing.T) {
	prompt := Default().PromptText()
	for _, want := range []string{
		"SDI POLICY RULES:",
		"REQUIRED DOCUMENTS:",
		"OPTIONAL DOCUMENTS:",
		"PAYMENT VERIFICATION REQUIREMENTS:",
		"CHARGE CLASSIFICATION RULES:",
		"CLAIM STATUS RULES:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing section %q", want)
		}
	}
}

func TestChargeRulesTextNamesBothClasses(t *testing.T) {
	text := Default().ChargeRulesText()
	if !strings.Contains(text, "APPROVED") || !strings.Contains(text, "EXCLUDED") {
		t.Fatalf("charge rules text = %s", text)
	}
}
