package identity

import "strings"

// institutionalDomain is the only domain (with its subdomains) accepted for
// registration.
const institutionalDomain = "iffar.edu.br"

// InstitutionalEmail reports whether the address belongs to the institution,
// e.g. aluno@aluno.iffar.edu.br or docente@iffar.edu.br.
func InstitutionalEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return domain == institutionalDomain || strings.HasSuffix(domain, "."+institutionalDomain)
}
