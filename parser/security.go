package parser

// SecurityNode covers the handful of permission/principal statements spec
// §4.1 step 15 asks to preserve structurally: GRANT/DENY/REVOKE,
// sp_addrolemember / ALTER ROLE ... ADD MEMBER, and CREATE USER/ROLE.
// LOGIN, CERTIFICATE, ASYMMETRIC KEY and similar server-level principal
// statements are recognized only to be silently skipped (spec's Non-goals
// exclude server-level security — a project-scoped model has no home for
// them).
type SecurityNode struct {
	Kind        string // "Grant", "Deny", "Revoke", "RoleMembership", "User", "Role"
	Permission  string
	ObjectSchema string
	ObjectName  string
	Principal   string
	RoleName    string
	MemberName  string
}

var skippedPrincipalKeywords = map[string]bool{
	"LOGIN": true, "CERTIFICATE": true, "MASTER": true, "ASYMMETRIC": true,
}

// ParseSecurityStatement returns the recognized node and true, or (nil,
// false). Statements that are recognized but dropped come back under the
// "SkippedPrincipal" recognizer.
func ParseSecurityStatement(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)

	kind := ""
	switch {
	case c.ConsumeKeyword("GRANT"):
		kind = "Grant"
	case c.ConsumeKeyword("DENY"):
		kind = "Deny"
	case c.ConsumeKeyword("REVOKE"):
		kind = "Revoke"
	default:
		return parseSecurityOther(toks)
	}
	node := SecurityNode{Kind: kind}
	perm, _ := c.ParseIdentifier()
	node.Permission = perm
	for c.ConsumePunct(",") {
		more, _ := c.ParseIdentifier()
		node.Permission += "," + more
	}
	if c.ConsumeKeyword("ON") {
		qn, _ := c.ParseSchemaQualifiedName()
		node.ObjectSchema, node.ObjectName = qn.SchemaAndName("dbo")
	}
	if c.ConsumeKeyword("TO") || c.ConsumeKeyword("FROM") {
		principal, _ := c.ParseIdentifier()
		node.Principal = principal
	}
	return FallbackNode{Recognizer: "Security", Node: node}, true
}

func parseSecurityOther(toks []Token) (StatementBody, bool) {
	c := NewCursor(toks)

	if c.ConsumeKeywords("EXEC", "sp_addrolemember") || c.ConsumeKeywords("EXECUTE", "sp_addrolemember") {
		role, _ := c.ParseIdentifier()
		c.ConsumePunct(",")
		member, _ := c.ParseIdentifier()
		return FallbackNode{Recognizer: "RoleMembership", Node: SecurityNode{
			Kind: "RoleMembership", RoleName: stripQuotes(role), MemberName: stripQuotes(member),
		}}, true
	}

	c = NewCursor(toks)
	if c.ConsumeKeyword("ALTER") && c.ConsumeKeyword("ROLE") {
		role, _ := c.ParseIdentifier()
		if c.ConsumeKeywords("ADD", "MEMBER") {
			member, _ := c.ParseIdentifier()
			return FallbackNode{Recognizer: "RoleMembership", Node: SecurityNode{
				Kind: "RoleMembership", RoleName: role, MemberName: member,
			}}, true
		}
		return nil, false
	}

	c = NewCursor(toks)
	if c.ConsumeKeywords("CREATE", "USER") {
		name, _ := c.ParseIdentifier()
		return FallbackNode{Recognizer: "User", Node: SecurityNode{Kind: "User", Principal: name}}, true
	}

	c = NewCursor(toks)
	if c.ConsumeKeywords("CREATE", "ROLE") {
		name, _ := c.ParseIdentifier()
		return FallbackNode{Recognizer: "Role", Node: SecurityNode{Kind: "Role", RoleName: name}}, true
	}

	c = NewCursor(toks)
	if c.ConsumeKeyword("CREATE") {
		for _, kw := range []string{"LOGIN", "CERTIFICATE", "MASTER", "ASYMMETRIC"} {
			if c.CheckKeyword(kw) {
				return FallbackNode{Recognizer: "SkippedPrincipal", Node: SecurityNode{Kind: "Skipped"}}, true
			}
		}
	}

	return nil, false
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
