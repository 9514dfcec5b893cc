package lexicon

import (
	"fmt"
	"sort"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Built-in Russian word lists. Case forms of the personal pronouns and the
// possessive determiners, plus frequent second-person verb forms whose
// singular/plural pair encodes the T/V choice even without a pronoun.
var russian = []Category{
	{
		Name: "pronoun_t", Class: model.ClassT, Language: "ru",
		Forms:  []string{"ты", "тебя", "тебе", "тобой", "тобою"},
		Lemmas: []string{"ты"},
	},
	{
		Name: "pronoun_v", Class: model.ClassV, Language: "ru",
		Forms:  []string{"вы", "вас", "вам", "вами"},
		Lemmas: []string{"вы"},
	},
	{
		Name: "possessive_t", Class: model.ClassT, Language: "ru",
		Forms: []string{
			"твой", "твоего", "твоему", "твоим", "твоём",
			"твоё", "твоя", "твоей", "твою", "твоею",
			"твои", "твоих", "твоими",
		},
		Lemmas: []string{"твой"},
	},
	{
		Name: "possessive_v", Class: model.ClassV, Language: "ru",
		Forms: []string{
			"ваш", "вашего", "вашему", "вашим", "вашем",
			"ваше", "ваша", "вашей", "вашу", "вашею",
			"ваши", "ваших", "вашими",
		},
		Lemmas: []string{"ваш"},
	},
	{
		Name: "imperative_t", Class: model.ClassT, Language: "ru",
		Forms: []string{
			"смотри", "посмотри", "слушай", "послушай", "подожди", "погоди",
			"извини", "прости", "скажи", "иди", "садись", "возьми", "дай",
			"помоги", "позвони", "заходи", "проходи", "представь", "давай",
			"волнуйся", "беспокойся",
		},
	},
	{
		Name: "imperative_v", Class: model.ClassV, Language: "ru",
		Forms: []string{
			"смотрите", "посмотрите", "слушайте", "послушайте", "подождите", "погодите",
			"извините", "простите", "скажите", "идите", "садитесь", "возьмите", "дайте",
			"помогите", "позвоните", "заходите", "проходите", "представьте", "давайте",
			"волнуйтесь", "беспокойтесь",
		},
	},
	{
		Name: "verb_2sg", Class: model.ClassT, Language: "ru",
		Forms: []string{
			"знаешь", "хочешь", "можешь", "думаешь", "понимаешь", "видишь",
			"будешь", "слышишь", "помнишь", "веришь", "говоришь", "делаешь", "идёшь",
		},
	},
	{
		Name: "verb_2pl", Class: model.ClassV, Language: "ru",
		Forms: []string{
			"знаете", "хотите", "можете", "думаете", "понимаете", "видите",
			"будете", "слышите", "помните", "верите", "говорите", "делаете", "идёте",
		},
	},
	{
		Name: "address_title_v", Class: model.ClassV, Language: "ru",
		Forms: []string{"сударь", "сударыня"},
	},
}

// Built-in English word lists. English has no T/V pronoun distinction, so
// "you" only marks second-person address; archaic pronouns and honorific
// titles carry a class.
var english = []Category{
	{
		Name: "pronoun_address", Class: model.ClassAddress, Language: "en",
		Forms: []string{
			"you", "your", "yours", "yourself", "yourselves",
			"you're", "you've", "you'll", "you'd", "y'all", "ya",
		},
		Lemmas: []string{"you"},
	},
	{
		Name: "pronoun_archaic_t", Class: model.ClassT, Language: "en",
		Forms:  []string{"thou", "thee", "thy", "thine", "thyself"},
		Lemmas: []string{"thou"},
	},
	{
		Name: "honorific_title_v", Class: model.ClassV, Language: "en",
		Forms: []string{"sir", "madam", "ma'am", "milord", "milady", "sire"},
	},
}

var builtins = map[string][]Category{
	"ru": russian,
	"en": english,
}

// Builtin returns the built-in categories for a language.
func Builtin(language string) ([]Category, error) {
	cats, ok := builtins[language]
	if !ok {
		return nil, fmt.Errorf("no built-in lexicon for language %q (available: %v)", language, BuiltinLanguages())
	}
	out := make([]Category, len(cats))
	copy(out, cats)
	return out, nil
}

// BuiltinLanguages lists the languages with a built-in lexicon.
func BuiltinLanguages() []string {
	langs := make([]string, 0, len(builtins))
	for l := range builtins {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Default builds the store with the Russian and English built-in lexicons.
func Default() (*Store, error) {
	return Build([]string{"ru", "en"}, nil)
}
