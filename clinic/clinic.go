// Package clinic holds the static knowledge base the agent answers from:
// clinic identity, hours, services, contact and appointment policy. The
// value is built once at startup and never mutated afterwards.
package clinic

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Owner describes the physician running the clinic
type Owner struct {
	Name        string   `yaml:"name"`
	Credentials []string `yaml:"credentials"`
	Bio         string   `yaml:"bio"`
}

// Contact holds the clinic's reachable coordinates
type Contact struct {
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
	Fax     string `yaml:"fax"`
	Email   string `yaml:"email"`
	Website string `yaml:"website"`
}

// AppointmentInfo describes how patients get seen
type AppointmentInfo struct {
	BookingMethod      string   `yaml:"booking_method"`
	AcceptsNewPatients bool     `yaml:"accepts_new_patients"`
	Insurance          []string `yaml:"insurance"`
	WalkIns            string   `yaml:"walk_ins"`
	AfterHours         string   `yaml:"after_hours"`
}

// ServiceCategory groups related clinical services
type ServiceCategory struct {
	Category string   `yaml:"category"`
	Items    []string `yaml:"items"`
}

// Affiliations lists hospital and professional memberships
type Affiliations struct {
	Hospitals    []string `yaml:"hospitals"`
	Professional []string `yaml:"professional"`
	NPINumber    string   `yaml:"npi_number"`
}

// Clinic is the immutable knowledge base. Construct it with Default or
// Load and pass it by pointer; nothing mutates it after startup.
type Clinic struct {
	Name            string            `yaml:"name"`
	Owner           Owner             `yaml:"owner"`
	Tagline         string            `yaml:"tagline"`
	Overview        string            `yaml:"overview"`
	Contact         Contact           `yaml:"contact"`
	BusinessHours   map[string]string `yaml:"business_hours"`
	AppointmentInfo AppointmentInfo   `yaml:"appointment_info"`
	Services        []ServiceCategory `yaml:"services"`
	Affiliations    Affiliations      `yaml:"affiliations"`
}

// Default returns the built-in Centro Otológico de Puerto Rico data
func Default() *Clinic {
	return &Clinic{
		Name: "Centro Otológico de Puerto Rico",
		Owner: Owner{
			Name: "Dr. Miguel A. Lasalle López",
			Credentials: []string{
				"MD",
				"Board-Certified Otolaryngologist",
				"Fellowship-trained Otologist/Neurotologist",
			},
			Bio: "Board-certified ENT surgeon with over 20 years of experience, specializing in ear and hearing disorders, cochlear implants, and balance conditions.",
		},
		Tagline:  "Expert Ear, Nose & Throat Care in Mayagüez",
		Overview: "Centro Otológico de Puerto Rico is the leading otorhinolaryngology clinic in western Puerto Rico. Founded in 2002 and led by Dr. Miguel A. Lasalle, we deliver patient-centered care ranging from routine ENT check-ups to advanced ear surgeries and cochlear implants.",
		Contact: Contact{
			Address: "55 Calle De Diego Este, Suite 105, CPR Professional Building, Mayagüez, PR 00680",
			Phone:   "(787) 833-2155",
			Fax:     "(787) 833-2680",
			Website: "https://centrootologicopr.com",
		},
		BusinessHours: map[string]string{
			"monday":    "8:00 am – 5:00 pm",
			"tuesday":   "8:00 am – 5:00 pm",
			"wednesday": "8:00 am – 5:00 pm",
			"thursday":  "8:00 am – 5:00 pm",
			"friday":    "8:00 am – 5:00 pm",
			"saturday":  "Closed",
			"sunday":    "Closed",
		},
		AppointmentInfo: AppointmentInfo{
			BookingMethod:      "Call the office to schedule. Online booking currently unavailable.",
			AcceptsNewPatients: true,
			Insurance:          []string{"Most major plans", "Medicare", "Medicaid"},
			WalkIns:            "Not typical; please call for urgent cases.",
			AfterHours:         "For emergencies, visit the nearest ER or call the office for instructions.",
		},
		Services: []ServiceCategory{
			{
				Category: "Diagnostics",
				Items: []string{
					"Comprehensive ENT evaluation",
					"Audiological testing (hearing evaluations)",
					"Vestibular & balance testing",
				},
			},
			{
				Category: "Hearing Rehabilitation",
				Items: []string{
					"Hearing aid fitting & programming",
					"Cochlear implant",
					"Bone-anchored hearing devices",
					"Aural rehabilitation & counseling",
				},
			},
			{
				Category: "Medical Treatments",
				Items: []string{
					"Sinus & allergy management",
					"Pediatric ENT care (ear infections, tonsillitis)",
					"Tinnitus evaluation & treatment",
				},
			},
			{
				Category: "Surgical Interventions",
				Items: []string{
					"Cochlear implant surgery & programming",
					"Tympanoplasty & mastoidectomy",
					"Stapedectomy & cholesteatoma removal",
					"Functional endoscopic sinus surgery (FESS)",
					"Tonsillectomy & adenoidectomy",
				},
			},
			{
				Category: "Balance Disorder Management",
				Items: []string{
					"Vertigo & Ménière's disease evaluation",
					"Medical management & vestibular rehab referrals",
				},
			},
		},
		Affiliations: Affiliations{
			Hospitals: []string{
				"Mayagüez Medical Center – Dr. Ramón E. Betances Hospital",
				"Hospital Perea, Mayagüez",
				"Hospital San Antonio, Mayagüez",
			},
			Professional: []string{
				"American Board of Otolaryngology – Head & Neck Surgery",
				"American Academy of Otolaryngology–Head and Neck Surgery",
			},
			NPINumber: "1619958634",
		},
	}
}

// Load reads clinic data from a YAML file, falling back to Default when
// path is empty
func Load(path string) (*Clinic, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clinic config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse clinic config: %w", err)
	}
	return c, nil
}

// weekday order for deterministic prompt output
var dayOrder = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

// Prompt generates the Spanish system prompt seeded into every session
func (c *Clinic) Prompt() string {
	services := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		services = append(services, fmt.Sprintf("%s: %s", s.Category, strings.Join(s.Items, ", ")))
	}

	days := make([]string, 0, len(c.BusinessHours))
	for day := range c.BusinessHours {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return dayOrder[days[i]] < dayOrder[days[j]] })
	hours := make([]string, 0, len(days))
	for _, day := range days {
		hours = append(hours, fmt.Sprintf("%s: %s", day, c.BusinessHours[day]))
	}

	acceptsNew := "No"
	if c.AppointmentInfo.AcceptsNewPatients {
		acceptsNew = "Sí"
	}

	return fmt.Sprintf(`Eres el agente virtual del %s, dirigido por el %s.

INFORMACIÓN ESPECÍFICA DEL CENTRO:
- Nombre: %s
- Doctor: %s - %s
- Ubicación: %s
- Teléfono: %s
- Fax: %s

HORARIOS DE ATENCIÓN:
- %s

SERVICIOS DISPONIBLES:
- %s

INFORMACIÓN DE CITAS:
- Método de reserva: %s
- Acepta nuevos pacientes: %s
- Seguros aceptados: %s
- Emergencias: %s

INSTRUCCIONES ESPECÍFICAS:
- IMPORTANTE: SIEMPRE responde en ESPAÑOL
- Solo responde preguntas sobre servicios otológicos y del centro
- Si te preguntan algo fuera del tema médico otológico, di: "Lo siento, solo puedo ayudarte con información sobre nuestros servicios otológicos"
- Responde con frases naturales, nunca con datos en crudo ni listas literales
- NO agregues preguntas, sugerencias, o frases adicionales
- NO agregues "Feel free to ask" o frases en inglés
- NO agregues "¿Hay algo más en lo que pueda ayudarte?" o frases similares
- El sistema agregará automáticamente las opciones de seguimiento después de tu respuesta
- Para horarios: Si todos los días laborales tienen el mismo horario, di "De lunes a viernes de [hora] a [hora]" en lugar de listar cada día por separado
- Para horarios: Siempre menciona que sábados y domingos están cerrados
- Para contacto: Proporciona la información de contacto real (teléfono, dirección, etc.) en formato natural, no como lista
- CRÍTICO: NO hagas preguntas adicionales en ninguna respuesta`,
		c.Name, c.Owner.Name,
		c.Name,
		c.Owner.Name, strings.Join(c.Owner.Credentials, ", "),
		c.Contact.Address,
		c.Contact.Phone,
		c.Contact.Fax,
		strings.Join(hours, "\n- "),
		strings.Join(services, "\n- "),
		c.AppointmentInfo.BookingMethod,
		acceptsNew,
		strings.Join(c.AppointmentInfo.Insurance, ", "),
		c.AppointmentInfo.AfterHours,
	)
}

// ServiceByCategory returns the items of the first category whose name
// contains the given text (case-insensitive), or nil when none match
func (c *Clinic) ServiceByCategory(category string) []string {
	needle := strings.ToLower(category)
	for _, s := range c.Services {
		if strings.Contains(strings.ToLower(s.Category), needle) {
			return s.Items
		}
	}
	return nil
}

// ContactSummary returns the phone, address and weekday hours
func (c *Clinic) ContactSummary() (phone, address, hours string) {
	return c.Contact.Phone, c.Contact.Address, c.BusinessHours["monday"]
}
