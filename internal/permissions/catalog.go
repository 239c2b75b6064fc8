package permissions

func init() {
	defs := []*Definition{
		{
			Code:         "PATIENT_VIEW",
			Name:         "View patient records",
			Category:     "patient",
			ResourceType: "PATIENT",
			Sensitive:    true,
		},
		{
			Code:         "PATIENT_CREATE",
			Name:         "Register new patients",
			Category:     "patient",
			ResourceType: "PATIENT",
			Sensitive:    true,
		},
		{
			Code:         "PATIENT_UPDATE",
			Name:         "Update patient records",
			Category:     "patient",
			ResourceType: "PATIENT",
			Sensitive:    true,
		},
		{
			Code:         "PATIENT_DELETE",
			Name:         "Delete patient records",
			Category:     "patient",
			ResourceType: "PATIENT",
			Sensitive:    true,
		},
		{
			Code:         "MEDICAL_RECORD_VIEW",
			Name:         "View medical records",
			Category:     "patient",
			ResourceType: "MEDICAL_RECORD",
			Sensitive:    true,
		},
		{
			Code:         "MEDICAL_RECORD_UPDATE",
			Name:         "Write medical record entries",
			Category:     "patient",
			ResourceType: "MEDICAL_RECORD",
			Sensitive:    true,
		},
		{
			Code:         "BILLING_VIEW",
			Name:         "View invoices and balances",
			Category:     "billing",
			ResourceType: "BILLING",
		},
		{
			Code:         "BILLING_CREATE",
			Name:         "Create invoices",
			Category:     "billing",
			ResourceType: "BILLING",
		},
		{
			Code:         "BILLING_UPDATE",
			Name:         "Adjust invoices and payments",
			Category:     "billing",
			ResourceType: "BILLING",
		},
		{
			Code:         "INSURANCE_CLAIM_VIEW",
			Name:         "View insurance claims",
			Category:     "insurance",
			ResourceType: "INSURANCE_CLAIM",
		},
		{
			Code:         "INSURANCE_CLAIM_SUBMIT",
			Name:         "Submit insurance claims",
			Category:     "insurance",
			ResourceType: "INSURANCE_CLAIM",
		},
		{
			Code:         "PHARMACY_VIEW",
			Name:         "View pharmacy inventory and sales",
			Category:     "pharmacy",
			ResourceType: "PHARMACY",
		},
		{
			Code:         "PHARMACY_SELL",
			Name:         "Record pharmacy sales",
			Category:     "pharmacy",
			ResourceType: "PHARMACY",
		},
		{
			Code:         "PRESCRIPTION_VIEW",
			Name:         "View prescriptions",
			Category:     "pharmacy",
			ResourceType: "PRESCRIPTION",
			Sensitive:    true,
		},
		{
			Code:         "PRESCRIPTION_CREATE",
			Name:         "Issue prescriptions",
			Category:     "pharmacy",
			ResourceType: "PRESCRIPTION",
			Sensitive:    true,
		},
		{
			Code:         "IMAGING_VIEW",
			Name:         "View imaging studies",
			Category:     "imaging",
			ResourceType: "IMAGING",
			Sensitive:    true,
		},
		{
			Code:         "IMAGING_UPLOAD",
			Name:         "Attach imaging studies",
			Category:     "imaging",
			ResourceType: "IMAGING",
			Sensitive:    true,
		},
		{
			Code:         "HR_VIEW",
			Name:         "View staff records",
			Category:     "hr",
			ResourceType: "HR",
		},
		{
			Code:         "HR_MANAGE",
			Name:         "Manage staff records",
			Category:     "hr",
			ResourceType: "HR",
		},
		{
			Code:         "CODING_VIEW",
			Name:         "Look up medical codes",
			Category:     "coding",
			ResourceType: "CODING",
		},
		{
			Code:         "AUDIT_VIEW",
			Name:         "View audit logs",
			Category:     "audit",
			ResourceType: "AUDIT",
		},
		{
			Code:         "AUDIT_EXPORT",
			Name:         "Export audit logs",
			Category:     "audit",
			ResourceType: "AUDIT",
		},
		{
			Code:         "ROLE_VIEW",
			Name:         "View roles and permissions",
			Category:     "system",
			ResourceType: "ROLE",
		},
		{
			Code:         "ROLE_MANAGE",
			Name:         "Manage roles and assignments",
			Category:     "system",
			ResourceType: "ROLE",
		},
		{
			Code:         CodeSystemAdmin,
			Name:         "Full system administration",
			Category:     "system",
			ResourceType: "SYSTEM",
			System:       true,
		},
		{
			Code:         CodeEmergencyAccess,
			Name:         "Break-the-glass emergency access",
			Category:     "emergency",
			ResourceType: "PATIENT",
			Sensitive:    true,
			System:       true,
		},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
