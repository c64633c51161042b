package provisioner

var firstNames = []string{
	"James", "Maria", "Robert", "Linda", "Michael", "Patricia", "David", "Jennifer",
	"William", "Elizabeth", "Daniel", "Susan", "Carlos", "Aisha", "Kevin", "Nicole",
	"Brian", "Priya", "Jason", "Angela", "Tyler", "Rachel", "Marcus", "Hannah",
	"Luis", "Grace", "Ethan", "Olivia", "Noah", "Sofia", "Andre", "Megan",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas", "Taylor",
	"Moore", "Jackson", "Martin", "Lee", "Thompson", "White", "Harris", "Clark",
	"Lewis", "Robinson", "Walker", "Young", "Allen", "King", "Patel", "Nguyen",
}
